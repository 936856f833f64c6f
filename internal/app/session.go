package app

import (
	"context"
	stderrors "errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"

	"github.com/vango-dev/starter/internal/devtools"
	"github.com/vango-dev/starter/internal/i18n"
	"github.com/vango-dev/starter/internal/metrics"
	"github.com/vango-dev/starter/internal/store/user"
	"github.com/vango-dev/starter/pkg/bootstrap"
	"github.com/vango-dev/starter/pkg/query"
	"github.com/vango-dev/starter/pkg/render"
	"github.com/vango-dev/starter/pkg/router"
	"github.com/vango-dev/starter/pkg/store"
	"github.com/vango-dev/starter/pkg/vango"
	"github.com/vango-dev/starter/pkg/vdom"
)

// ErrSessionClosed is returned when work is handed to a closed session.
var ErrSessionClosed = stderrors.New("app: session closed")

const (
	tracerName        = "github.com/vango-dev/starter/internal/app"
	dispatchQueueSize = 64
	writeTimeout      = 5 * time.Second
)

// Options are the collaborators shared by every session.
type Options struct {
	// AppName is appended to page titles.
	AppName string

	Router    *router.Router
	Resources *i18n.Resources
	Query     query.Defaults

	// Metrics and Inspector are optional.
	Metrics   *metrics.Metrics
	Inspector *devtools.Inspector

	Logger *slog.Logger
	Tracer trace.Tracer
}

// Frame is one message to the browser.
type Frame struct {
	Type  string `json:"type"`
	HTML  string `json:"html,omitempty"`
	Lang  string `json:"lang,omitempty"`
	Class string `json:"class"`
	Title string `json:"title,omitempty"`
	Path  string `json:"path,omitempty"`

	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Session is the server side of one browser tab.
type Session struct {
	ID        string
	CreatedAt time.Time

	opts   Options
	logger *slog.Logger
	tracer trace.Tracer

	// lastActive is unix nanoseconds.
	lastActive atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc

	// Owned by the loop once init has run.
	owner      *vango.Owner
	listener   *vango.ListenerFunc
	doc        *bootstrap.Document
	gate       *bootstrap.Gate
	users      *user.Store
	client     *query.Client
	translator *i18n.Translator
	location   *router.Location
	last       Frame

	dispatchCh chan func()
	renderCh   chan struct{}
	done       chan struct{}
	loopDone   chan struct{}
	closed     atomic.Bool

	// mu guards conn; gorilla connections allow one writer at a time.
	mu   sync.Mutex
	conn *websocket.Conn
}

// newSession creates a session and starts its loop. The reactive state is
// built on the loop so every signal write happens there; newSession returns
// once it exists.
func newSession(id string, opts Options, tag language.Tag, path string) *Session {
	now := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		ID:         id,
		CreatedAt:  now,
		opts:       opts,
		logger:     logger.With("component", "session", "session_id", id),
		tracer:     opts.Tracer,
		ctx:        ctx,
		cancel:     cancel,
		dispatchCh: make(chan func(), dispatchQueueSize),
		renderCh:   make(chan struct{}, 1),
		done:       make(chan struct{}),
		loopDone:   make(chan struct{}),
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	s.touch()
	s.listener = vango.NewListenerFunc(s.requestRender)

	initialized := make(chan struct{})
	go s.loop()
	s.Dispatch(func() {
		defer close(initialized)
		s.init(tag, path)
	})
	<-initialized
	return s
}

func (s *Session) init(tag language.Tag, path string) {
	var storeOpts []store.Option
	var queryOpts []query.ClientOption
	storeOpts = append(storeOpts, store.WithLogger(s.logger), store.WithSession(s.ID))
	queryOpts = append(queryOpts,
		query.WithDefaults(s.opts.Query),
		query.WithLogger(s.logger),
		query.WithTracer(s.opts.Tracer),
	)
	if m := s.opts.Metrics; m != nil {
		storeOpts = append(storeOpts, store.WithObserver(m))
		queryOpts = append(queryOpts, query.WithObserver(m))
	}
	if in := s.opts.Inspector; in != nil {
		storeOpts = append(storeOpts, store.WithObserver(in))
	}

	s.owner = vango.NewOwner(nil)
	s.users = user.New(storeOpts...)
	s.client = query.NewClient(s.ctx, queryOpts...)
	s.translator = i18n.NewTranslator(s.opts.Resources, tag)
	s.location = s.opts.Router.NewLocation(path)
	s.doc = bootstrap.NewDocument("en", bootstrap.LoadingClass)

	vango.WithOwner(s.owner, func() {
		user.Context.Set(s.users)
	})

	s.gate = bootstrap.NewGate(s.ctx, s.translator, s.doc, s.Dispatch, s.mount,
		bootstrap.WithLogger(s.logger))
}

// mount is the provider tree the gate renders once translations are ready.
func (s *Session) mount() *vdom.VNode {
	return i18n.Context.Provider(s.translator,
		query.Context.Provider(s.client,
			router.Provider(s.location, Layout())))
}

func (s *Session) loop() {
	defer close(s.loopDone)
	defer vango.ReleaseGoroutine()

	for {
		select {
		case fn := <-s.dispatchCh:
			s.execute(fn)
		case <-s.renderCh:
			s.flush()
		case <-s.done:
			return
		}
	}
}

// execute runs fn on the loop, recovering panics.
func (s *Session) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("dispatch panic", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Dispatch queues fn to run on the session loop. It is safe from any
// goroutine and blocks while the queue is full. Work dispatched to a closed
// session is dropped.
func (s *Session) Dispatch(fn func()) {
	if s.closed.Load() {
		return
	}
	select {
	case s.dispatchCh <- fn:
	case <-s.done:
	}
}

// Call runs fn on the loop and waits for it to finish.
func (s *Session) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if s.closed.Load() {
		return ErrSessionClosed
	}
	s.Dispatch(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// requestRender schedules a render; repeated requests before the loop gets
// to it coalesce into one.
func (s *Session) requestRender() {
	if s.closed.Load() {
		return
	}
	select {
	case s.renderCh <- struct{}{}:
	default:
	}
}

// Snapshot renders the current frame on the loop.
func (s *Session) Snapshot(ctx context.Context) (Frame, error) {
	var f Frame
	err := s.Call(ctx, func() {
		f = s.render()
		s.last = f
	})
	return f, err
}

// flush renders and sends the frame when it differs from the last one.
func (s *Session) flush() {
	f := s.render()
	if f == s.last {
		return
	}
	s.last = f
	s.send(f)
}

// render resolves the tree with the session as listener, so any signal it
// reads schedules the next render. Query entries the tree stopped reading
// are unmounted and refetch when a later render mounts them again.
func (s *Session) render() (f Frame) {
	start := time.Now()
	_, span := s.tracer.Start(s.ctx, "session.render",
		trace.WithAttributes(attribute.String("session.id", s.ID)))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("render panic", "panic", r, "stack", string(debug.Stack()))
			span.SetStatus(codes.Error, "render panic")
			f = s.last
		}
	}()

	var tree *vdom.VNode
	var lang, class string
	vango.WithOwner(s.owner, func() {
		vango.WithListener(s.listener, func() {
			lang, class = s.doc.Lang(), s.doc.Class()
			s.client.BeginRender()
			tree = vango.Resolve(s.gate.Render())
			s.client.EndRender(s.listener)
		})
	})

	f = Frame{
		Type:  "render",
		HTML:  render.String(tree),
		Lang:  lang,
		Class: class,
		Title: s.title(),
		Path:  s.location.Path(),
	}
	span.SetAttributes(attribute.Int("render.bytes", len(f.HTML)))
	if m := s.opts.Metrics; m != nil {
		m.RenderDone(time.Since(start))
	}
	return f
}

// title translates the matched route's title, untracked.
func (s *Session) title() string {
	name := s.opts.AppName
	var path string
	vango.Untracked(func() { path = s.location.Path() })
	m, ok := s.opts.Router.Match(path)
	if !ok || m.Route.Title == "" || !s.gate.IsReady() {
		return name
	}
	t := s.translator.T(m.Route.Title)
	if name == "" {
		return t
	}
	return t + " · " + name
}

// attach makes conn the session's socket and pushes the current frame.
func (s *Session) attach(conn *websocket.Conn) {
	s.mu.Lock()
	old := s.conn
	s.conn = conn
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}
	s.touch()

	s.Dispatch(func() {
		s.last = Frame{}
		s.requestRender()
	})
}

// detach forgets conn if it is still the session's socket.
func (s *Session) detach(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()
	s.touch()
}

// connected reports whether a socket is attached.
func (s *Session) connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// send writes f to the socket, if any. A failed write drops the socket.
func (s *Session) send(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteJSON(f); err != nil {
		s.logger.Warn("write frame", "type", f.Type, "error", err)
		if m := s.opts.Metrics; m != nil {
			m.WebSocketError("write")
		}
		s.conn.Close()
		s.conn = nil
	}
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// LastActive returns when the session last saw its socket or a frame.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} { return s.done }

// IsClosed reports whether Close has run.
func (s *Session) IsClosed() bool { return s.closed.Load() }

// Close stops the loop, cancels in-flight fetches and closes the socket.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}
	close(s.done)
	<-s.loopDone
	s.cancel()

	if s.client != nil {
		s.client.Close()
	}
	if s.owner != nil {
		s.owner.Dispose()
	}

	s.mu.Lock()
	if s.conn != nil {
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.conn.Close()
		s.conn = nil
	}
	s.mu.Unlock()

	s.logger.Info("session closed", "age", time.Since(s.CreatedAt).Round(time.Millisecond))
}

// Users returns the session's user store.
func (s *Session) Users() *user.Store { return s.users }

// Client returns the session's query client.
func (s *Session) Client() *query.Client { return s.client }

// Location returns the session's router location.
func (s *Session) Location() *router.Location { return s.location }

// Document returns the session's document state.
func (s *Session) Document() *bootstrap.Document { return s.doc }

// Gate returns the session's bootstrap gate.
func (s *Session) Gate() *bootstrap.Gate { return s.gate }
