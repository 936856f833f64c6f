package vango

import (
	"errors"
	"sync"
	"testing"
)

func TestSignalBasic(t *testing.T) {
	count := NewSignal(0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
}

func TestSignalPeek(t *testing.T) {
	count := NewSignal(42)

	listener := newTestListener()
	WithListener(listener, func() {
		if value := count.Peek(); value != 42 {
			t.Errorf("expected 42, got %d", value)
		}
	})

	count.Set(100)
	if listener.getDirtyCount() != 0 {
		t.Errorf("Peek should not subscribe listener, got %d notifications", listener.getDirtyCount())
	}
}

func TestSignalSubscription(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = count.Get()
		_ = count.Get()
	})
	if count.Subscribers() != 1 {
		t.Errorf("expected 1 subscriber after two reads, got %d", count.Subscribers())
	}

	count.Set(1)
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}

	count.Set(1)
	if listener.getDirtyCount() != 1 {
		t.Errorf("same value should not notify, got %d", listener.getDirtyCount())
	}

	count.Set(2)
	if listener.getDirtyCount() != 2 {
		t.Errorf("expected 2 notifications, got %d", listener.getDirtyCount())
	}
}

func TestSignalStructEquality(t *testing.T) {
	type pair struct {
		A string
		B []int
	}
	s := NewSignal(pair{A: "x", B: []int{1}})
	listener := newTestListener()
	s.Subscribe(listener)

	s.Set(pair{A: "x", B: []int{1}})
	if listener.getDirtyCount() != 0 {
		t.Errorf("deep-equal struct should not notify, got %d", listener.getDirtyCount())
	}

	s.Set(pair{A: "x", B: []int{1, 2}})
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}
}

func TestSignalErrorValues(t *testing.T) {
	errA := errors.New("a")
	s := NewSignal[error](nil)
	listener := newTestListener()
	s.Subscribe(listener)

	s.Set(nil)
	s.Set(errA)
	s.Set(errA)
	s.Set(nil)

	if listener.getDirtyCount() != 2 {
		t.Errorf("expected 2 notifications, got %d", listener.getDirtyCount())
	}
}

func TestSignalWithEquals(t *testing.T) {
	s := NewSignal("Hello").WithEquals(func(a, b string) bool {
		return len(a) == len(b)
	})
	listener := newTestListener()
	s.Subscribe(listener)

	s.Set("World")
	if listener.getDirtyCount() != 0 {
		t.Errorf("custom equality should suppress notification, got %d", listener.getDirtyCount())
	}
	if s.Peek() != "Hello" {
		t.Errorf("expected value to stay Hello, got %s", s.Peek())
	}
}

func TestSignalConcurrentWrites(t *testing.T) {
	count := NewSignal(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer ReleaseGoroutine()
			count.Update(func(n int) int { return n + 1 })
		}()
	}
	wg.Wait()

	if count.Peek() != 50 {
		t.Errorf("expected 50, got %d", count.Peek())
	}
}
