package app

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/vango-dev/starter/internal/errors"
)

// ErrSessionLimit is returned by Create when MaxSessions live sessions
// already exist.
var ErrSessionLimit = stderrors.New("app: session limit reached")

// ManagerConfig bounds the session population.
type ManagerConfig struct {
	// TTL is how long a session without a socket survives.
	TTL time.Duration

	// MaxSessions caps live sessions; 0 means unlimited.
	MaxSessions int

	// SweepInterval is how often expired sessions are collected
	// (default: TTL/2, at least one second).
	SweepInterval time.Duration
}

// Manager creates, finds and expires sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	config ManagerConfig
	opts   Options
	logger *slog.Logger

	done      chan struct{}
	sweepDone chan struct{}
	shutdown  sync.Once
}

// NewManager creates a manager and starts its sweep loop.
func NewManager(opts Options, config ManagerConfig) *Manager {
	if config.TTL <= 0 {
		config.TTL = 2 * time.Minute
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = config.TTL / 2
		if config.SweepInterval < time.Second {
			config.SweepInterval = time.Second
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		sessions:  make(map[string]*Session),
		config:    config,
		opts:      opts,
		logger:    logger.With("component", "sessions"),
		done:      make(chan struct{}),
		sweepDone: make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

// Create starts a session for a browser preferring tag, at path.
func (m *Manager) Create(tag language.Tag, path string) (*Session, error) {
	if limit := m.config.MaxSessions; limit > 0 && m.Count() >= limit {
		m.sweep(time.Now())
		if m.Count() >= limit {
			return nil, ErrSessionLimit
		}
	}

	s := newSession(uuid.NewString(), m.opts, tag, path)

	m.mu.Lock()
	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()

	if mt := m.opts.Metrics; mt != nil {
		mt.SessionOpened()
	}
	m.logger.Debug("session created", "session_id", s.ID, "lang", tag.String(), "path", path, "sessions", count)
	return s, nil
}

// Get returns the live session with id, or E400.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || s.IsClosed() {
		return nil, errors.New(errors.CodeSessionNotFound).WithDetailf("no live session %q", id)
	}
	return s, nil
}

// Close closes and forgets the session with id.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		m.closeSession(s)
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) closeSession(s *Session) {
	s.Close()
	if mt := m.opts.Metrics; mt != nil {
		mt.SessionClosed()
	}
}

func (m *Manager) sweepLoop() {
	defer close(m.sweepDone)

	ticker := time.NewTicker(m.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			m.sweep(now)
		case <-m.done:
			return
		}
	}
}

// sweep closes sessions without a socket that have been idle longer than
// the TTL. It returns how many were closed.
func (m *Manager) sweep(now time.Time) int {
	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.connected() {
			continue
		}
		if now.Sub(s.LastActive()) > m.config.TTL {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	remaining := len(m.sessions)
	m.mu.Unlock()

	for _, s := range expired {
		m.closeSession(s)
	}
	if len(expired) > 0 {
		m.logger.Info("cleaned up expired sessions", "count", len(expired), "remaining", remaining)
	}
	return len(expired)
}

// Shutdown stops the sweep loop and closes every session concurrently.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.shutdown.Do(func() {
		close(m.done)
	})
	<-m.sweepDone

	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			m.closeSession(s)
		}(s)
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.logger.Info("session manager shutdown", "closed_sessions", len(sessions))
	return nil
}
