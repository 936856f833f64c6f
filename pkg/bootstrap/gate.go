package bootstrap

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-dev/starter/pkg/vango"
	"github.com/vango-dev/starter/pkg/vdom"
)

// Initializer is a resource the first render waits for.
type Initializer interface {
	// IsInitialized reports whether the resource is ready now.
	IsInitialized() bool

	// Ready is closed once the resource is ready.
	Ready() <-chan struct{}

	// Language is the locale to put on the document once ready.
	Language() string
}

// State is the gate state.
type State int

const (
	NotReady State = iota
	Ready
)

// String implements fmt.Stringer.
func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "not-ready"
}

// Gate withholds rendering until its Initializer is ready.
type Gate struct {
	init     Initializer
	doc      *Document
	dispatch func(func())
	mount    func() *vdom.VNode
	state    *vango.Signal[State]
	once     sync.Once
	logger   *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithLogger sets the gate logger.
func WithLogger(l *slog.Logger) GateOption {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGate creates a gate. If init is already initialized the gate opens
// before NewGate returns. Otherwise a goroutine waits for init.Ready() and
// hands the transition to dispatch, which must run it on the session loop.
// Cancelling ctx abandons the wait.
func NewGate(ctx context.Context, init Initializer, doc *Document, dispatch func(func()), mount func() *vdom.VNode, opts ...GateOption) *Gate {
	g := &Gate{
		init:     init,
		doc:      doc,
		dispatch: dispatch,
		mount:    mount,
		state:    vango.NewSignal(NotReady),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if init.IsInitialized() {
		g.open()
		return g
	}

	go func() {
		defer vango.ReleaseGoroutine()
		select {
		case <-init.Ready():
			g.dispatch(g.open)
		case <-ctx.Done():
		}
	}()
	return g
}

// open performs the NotReady to Ready transition, at most once.
func (g *Gate) open() {
	g.once.Do(func() {
		lang := g.init.Language()
		vango.Batch(func() {
			g.doc.SetLang(lang)
			g.doc.RemoveClass(LoadingClass)
			g.state.Set(Ready)
		})
		g.logger.Debug("bootstrap gate opened", "lang", lang)
	})
}

// State returns the gate state, tracked.
func (g *Gate) State() State { return g.state.Get() }

// IsReady reports whether the gate is open, untracked.
func (g *Gate) IsReady() bool { return g.state.Peek() == Ready }

// Render returns nothing while NotReady and the mounted tree once Ready.
func (g *Gate) Render() *vdom.VNode {
	if g.state.Get() != Ready {
		return nil
	}
	return g.mount()
}
