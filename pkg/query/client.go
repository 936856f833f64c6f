package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/vango-dev/starter/pkg/vango"
)

// ErrNoFetcher is reported by an entry that was read before any fetcher
// was registered for its key.
var ErrNoFetcher = errors.New("query: no fetcher registered for key")

// NeverStale keeps loaded data fresh until it is invalidated.
const NeverStale = time.Duration(math.MaxInt64)

// Observer receives fetch lifecycle notifications. internal/metrics
// implements it.
type Observer interface {
	FetchStarted(key string)
	FetchFinished(key string, elapsed time.Duration, err error)
}

// Defaults apply to every Use call that leaves the matching option zero.
type Defaults struct {
	StaleTime  time.Duration
	Retry      int
	RetryDelay time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDefaults sets client-wide option defaults.
func WithDefaults(d Defaults) ClientOption {
	return func(c *Client) { c.defaults = d }
}

// WithObserver registers an Observer. nil is ignored.
func WithObserver(o Observer) ClientOption {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracer overrides the tracer used for fetch spans.
func WithTracer(t trace.Tracer) ClientOption {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// Client is a keyed cache of fetch results. The zero value is not usable;
// create clients with NewClient. One client serves one live session.
type Client struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
	wg      sync.WaitGroup

	// pass counts render passes; guarded by mu.
	pass uint64

	defaults Defaults
	observer Observer
	logger   *slog.Logger
	tracer   trace.Tracer
}

// snapshot is the reactive part of an entry.
type snapshot struct {
	status    Status
	data      any
	err       error
	fetching  bool
	updatedAt time.Time
}

type entry struct {
	key   Key
	hash  string
	state *vango.Signal[snapshot]

	// guarded by Client.mu
	fetch       func(context.Context) (any, error)
	retry       int
	retryDelay  time.Duration
	staleTime   time.Duration
	invalidated bool
	observed    bool   // read by the latest render pass
	seen        uint64 // pass of the last read
	onSuccess   func(any)
	onError     func(error)
}

// NewClient creates a client whose fetches run under ctx. Close cancels
// in-flight fetches.
func NewClient(ctx context.Context, opts ...ClientOption) *Client {
	if ctx == nil {
		ctx = context.Background()
	}
	cctx, cancel := context.WithCancel(ctx)
	c := &Client{
		ctx:     cctx,
		cancel:  cancel,
		entries: make(map[string]*entry),
		logger:  slog.Default(),
		tracer:  otel.Tracer("github.com/vango-dev/starter/pkg/query"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "query")
	return c
}

// Close cancels in-flight fetches and waits for their goroutines.
func (c *Client) Close() {
	c.cancel()
	c.wg.Wait()
}

// lookup returns the entry for key, creating a pending one if needed.
func (c *Client) lookup(key Key) *entry {
	hash := key.Hash()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[hash]
	if !ok {
		e = &entry{
			key:   append(Key(nil), key...),
			hash:  hash,
			state: vango.NewSignal(snapshot{status: Pending}),
		}
		c.entries[hash] = e
	}
	return e
}

// observe records a read of e in the current render pass. It reports
// whether the read mounts e, that is whether e was not observed before.
func (c *Client) observe(e *entry) (mounted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	mounted = !e.observed
	e.observed = true
	e.seen = c.pass
	return mounted
}

// BeginRender starts a render pass. Entries read before the matching
// EndRender stay observed; the others are unmounted by EndRender.
func (c *Client) BeginRender() {
	c.mu.Lock()
	c.pass++
	c.mu.Unlock()
}

// EndRender unmounts every entry the pass did not read and unsubscribes l
// from it. The next read of such an entry counts as a mount.
func (c *Client) EndRender(l vango.Listener) {
	var dropped []*entry
	c.mu.Lock()
	for _, e := range c.entries {
		if e.observed && e.seen != c.pass {
			e.observed = false
			dropped = append(dropped, e)
		}
	}
	c.mu.Unlock()

	for _, e := range dropped {
		e.state.Unsubscribe(l)
	}
}

// needsFetch reports whether a read of e should start a fetch. A mount
// refetches stale data; other reads refetch only once StaleTime elapses.
func (c *Client) needsFetch(e *entry, mounted bool) bool {
	snap := e.state.Peek()
	if snap.fetching {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case e.fetch == nil:
		return false
	case snap.status == Pending, e.invalidated:
		return true
	case mounted && snap.status == Error:
		return true
	case snap.status != Ready:
		return false
	case mounted:
		return time.Since(snap.updatedAt) >= e.staleTime
	case e.staleTime > 0:
		return time.Since(snap.updatedAt) >= e.staleTime
	}
	return false
}

// start launches a fetch of e unless one is already running.
func (c *Client) start(e *entry) {
	started := false
	e.state.Update(func(s snapshot) snapshot {
		if s.fetching {
			return s
		}
		started = true
		s.fetching = true
		if s.status == Pending {
			s.status = Loading
		}
		return s
	})
	if !started {
		return
	}

	c.mu.Lock()
	e.invalidated = false
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer vango.ReleaseGoroutine()

		v, err, _ := c.group.Do(e.hash, func() (any, error) {
			return c.run(e)
		})
		c.settle(e, v, err)
	}()
}

// run performs the fetch with retries and records a span.
func (c *Client) run(e *entry) (any, error) {
	c.mu.Lock()
	fetch, attempts, delay := e.fetch, 1+e.retry, e.retryDelay
	c.mu.Unlock()

	ctx, span := c.tracer.Start(c.ctx, "query.fetch",
		trace.WithAttributes(attribute.String("query.key", e.hash)))
	defer span.End()

	if c.observer != nil {
		c.observer.FetchStarted(e.hash)
	}
	begin := time.Now()

	var (
		v       any
		err     error
		attempt int
	)
loop:
	for attempt = 1; ; attempt++ {
		if fetch == nil {
			err = ErrNoFetcher
			break
		}
		v, err = c.call(ctx, fetch)
		if err == nil || attempt >= attempts {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break loop
		case <-time.After(delay):
		}
		c.logger.Debug("retrying fetch", "key", e.hash, "attempt", attempt+1)
	}

	span.SetAttributes(attribute.Int("query.attempts", attempt))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if c.observer != nil {
		c.observer.FetchFinished(e.hash, time.Since(begin), err)
	}
	return v, err
}

// call invokes fetch, turning a panic into an error.
func (c *Client) call(ctx context.Context, fetch func(context.Context) (any, error)) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("query: fetcher panicked: %v", r)
		}
	}()
	return fetch(ctx)
}

// settle stores the outcome of a fetch.
func (c *Client) settle(e *entry, v any, err error) {
	if err != nil && c.ctx.Err() != nil {
		// Client closed; nobody is left to render the result.
		return
	}

	c.mu.Lock()
	onSuccess, onError := e.onSuccess, e.onError
	c.mu.Unlock()

	e.state.Update(func(s snapshot) snapshot {
		s.fetching = false
		if err != nil {
			s.status = Error
			s.err = err
			return s
		}
		s.status = Ready
		s.data = v
		s.err = nil
		s.updatedAt = time.Now()
		return s
	})

	if err != nil {
		c.logger.Warn("fetch failed", "key", e.hash, "error", err)
		if onError != nil {
			onError(err)
		}
		return
	}
	c.logger.Debug("fetch settled", "key", e.hash)
	if onSuccess != nil {
		onSuccess(v)
	}
}

// matching returns the entries whose key starts with prefix.
func (c *Client) matching(prefix Key) []*entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []*entry
	for _, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			out = append(out, e)
		}
	}
	return out
}

// Invalidate marks every entry whose key starts with prefix as stale.
// Entries the latest render pass read are refetched immediately; the rest
// refetch on their next read. It returns the number of entries matched.
func (c *Client) Invalidate(prefix Key) int {
	entries := c.matching(prefix)
	for _, e := range entries {
		c.mu.Lock()
		e.invalidated = true
		runnable := e.fetch != nil && e.observed
		c.mu.Unlock()

		if runnable {
			c.start(e)
		}
	}
	return len(entries)
}

// Refetch fetches every entry whose key starts with prefix, observed or not.
func (c *Client) Refetch(prefix Key) int {
	entries := c.matching(prefix)
	for _, e := range entries {
		c.mu.Lock()
		runnable := e.fetch != nil
		c.mu.Unlock()

		if runnable {
			c.start(e)
		}
	}
	return len(entries)
}

// Remove drops entries whose key starts with prefix.
func (c *Client) Remove(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for hash, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			delete(c.entries, hash)
			n++
		}
	}
	return n
}

// Keys returns the keys currently cached.
func (c *Client) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Key, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.key)
	}
	return out
}

// Context carries the session's Client to Use calls made during render.
var Context = vango.CreateContext[*Client](nil).Named("query")

// UseClient returns the Client provided by the nearest Context provider.
// It panics when none is provided.
func UseClient() *Client {
	c := Context.Use()
	if c == nil {
		panic("query: no Client provided; wrap the tree in query.Context.Provider")
	}
	return c
}
