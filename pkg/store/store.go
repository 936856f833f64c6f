package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/starter/pkg/vango"
)

// Event describes one state transition.
type Event struct {
	// Store is the name the store was created with.
	Store string `json:"store"`

	// Session is the id given with WithSession, empty otherwise.
	Session string `json:"session,omitempty"`

	// Type is the action label passed to SetState or Update,
	// e.g. "user-store/user/logout".
	Type string `json:"type"`

	State any       `json:"state"`
	Prev  any       `json:"prev"`
	At    time.Time `json:"at"`
}

// Observer receives every Event a store emits. Observe is called on the
// goroutine that performed the action, after subscribers ran.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(e Event) { f(e) }

// Option configures a Store.
type Option func(*options)

type options struct {
	observers []Observer
	logger    *slog.Logger
	session   string
}

// WithObserver adds an Observer. Nil observers are ignored.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		if o != nil {
			opts.observers = append(opts.observers, o)
		}
	}
}

// WithLogger sets the logger used for action tracing at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = l
	}
}

// WithSession tags every event with the id of the session owning the store.
func WithSession(id string) Option {
	return func(opts *options) {
		opts.session = id
	}
}

// Store is an observable container for a state value of type S.
type Store[S any] struct {
	name    string
	session string
	state   *vango.Signal[S]

	// mu serializes SetState/Update so subscribers see transitions in order.
	mu sync.Mutex

	subsMu sync.RWMutex
	subs   map[uint64]func(next, prev S)
	order  []uint64

	observers []Observer
	logger    *slog.Logger
}

// New creates a store holding initial.
func New[S any](name string, initial S, opts ...Option) *Store[S] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Store[S]{
		name:      name,
		session:   o.session,
		state:     vango.NewSignal(initial),
		subs:      make(map[uint64]func(next, prev S)),
		observers: o.observers,
		logger:    logger.With("component", "store", "store", name),
	}
}

// Name returns the store's name.
func (s *Store[S]) Name() string { return s.name }

// GetState returns the current state without subscribing the caller.
func (s *Store[S]) GetState() S {
	return s.state.Peek()
}

// Get returns the current state and subscribes the current listener to
// every change. Prefer a Selector when only one field is needed.
func (s *Store[S]) Get() S {
	return s.state.Get()
}

// SetState replaces the state with next, labeling the transition action.
func (s *Store[S]) SetState(action string, next S) {
	s.Update(action, func(S) S { return next })
}

// Update replaces the state with fn(current), labeling the transition action.
// Subscribers run inside a single vango.Batch so a listener that depends on
// several fields is marked dirty once. An event is emitted even when the new
// state equals the old one.
func (s *Store[S]) Update(action string, fn func(S) S) {
	s.mu.Lock()
	prev := s.state.Peek()
	next := fn(prev)

	vango.Batch(func() {
		s.state.Set(next)
		for _, sub := range s.subscribers() {
			sub(next, prev)
		}
	})
	s.mu.Unlock()

	s.logger.Debug("store action", "action", action)
	if len(s.observers) == 0 {
		return
	}
	ev := Event{Store: s.name, Session: s.session, Type: action, State: next, Prev: prev, At: time.Now()}
	for _, o := range s.observers {
		o.Observe(ev)
	}
}

// Subscribe registers fn to run after every transition, in registration
// order. The returned function removes the subscription. Subscribers must
// not call SetState or Update on the same store.
func (s *Store[S]) Subscribe(fn func(next, prev S)) (unsubscribe func()) {
	id := vango.NextID()

	s.subsMu.Lock()
	s.subs[id] = fn
	s.order = append(s.order, id)
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			delete(s.subs, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (s *Store[S]) subscribers() []func(next, prev S) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	out := make([]func(next, prev S), 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.subs[id])
	}
	return out
}
