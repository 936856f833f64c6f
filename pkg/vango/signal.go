package vango

import (
	"reflect"
	"sync"
)

// subscribers is the type-erased listener set shared by Signal instances.
type subscribers struct {
	mu   sync.RWMutex
	subs []Listener
}

func (s *subscribers) add(l Listener) {
	if l == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lid := l.ID()
	for _, existing := range s.subs {
		if existing.ID() == lid {
			return
		}
	}
	s.subs = append(s.subs, l)
}

func (s *subscribers) remove(l Listener) {
	if l == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lid := l.ID()
	for i, existing := range s.subs {
		if existing.ID() == lid {
			s.subs[i] = s.subs[len(s.subs)-1]
			s.subs = s.subs[:len(s.subs)-1]
			return
		}
	}
}

func (s *subscribers) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// notify marks every subscriber dirty, or queues them when the calling
// goroutine is inside a Batch. The slice is copied so no lock is held while
// listeners run.
func (s *subscribers) notify() {
	s.mu.RLock()
	subs := make([]Listener, len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	ctx := getTrackingContext()
	if ctx.batchDepth > 0 {
		ctx.pendingUpdates = append(ctx.pendingUpdates, subs...)
		return
	}
	for _, sub := range subs {
		sub.MarkDirty()
	}
}

// Signal is a reactive value container. Reading it with Get inside a
// tracked context subscribes the current listener.
type Signal[T any] struct {
	id    uint64
	subs  subscribers
	mu    sync.RWMutex
	value T
	equal func(T, T) bool
}

// NewSignal creates a signal holding initial.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{id: NextID(), value: initial}
}

// ID returns the signal's unique id.
func (s *Signal[T]) ID() uint64 { return s.id }

// Get returns the current value and subscribes the current listener.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	value := s.value
	s.mu.RUnlock()

	if l := getCurrentListener(); l != nil {
		s.subs.add(l)
	}
	return value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set stores value and notifies subscribers if it differs from the current one.
func (s *Signal[T]) Set(value T) {
	s.Update(func(T) T { return value })
}

// Update replaces the value with fn(current) under the signal lock.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	next := fn(s.value)
	changed := !s.equals(s.value, next)
	if changed {
		s.value = next
	}
	s.mu.Unlock()

	if changed {
		s.subs.notify()
	}
}

// Subscribe registers l explicitly, outside of any render.
func (s *Signal[T]) Subscribe(l Listener) { s.subs.add(l) }

// Unsubscribe removes l.
func (s *Signal[T]) Unsubscribe(l Listener) { s.subs.remove(l) }

// Subscribers reports how many listeners depend on the signal.
func (s *Signal[T]) Subscribers() int { return s.subs.len() }

// WithEquals configures the equality used to suppress no-op writes.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals uses == for common scalar types and reflect.DeepEqual otherwise.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	case int:
		return av == any(b).(int)
	case int64:
		return av == any(b).(int64)
	case uint64:
		return av == any(b).(uint64)
	case float64:
		return av == any(b).(float64)
	case error:
		be, _ := any(b).(error)
		return av == be
	}
	return reflect.DeepEqual(a, b)
}
