// Package metrics exposes Prometheus collectors for live sessions, renders,
// store actions and query fetches.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/starter/pkg/store"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metric namespace (default: "starter").
	Namespace string

	// Subsystem is the metric subsystem (default: "").
	Subsystem string

	// ConstLabels are added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the registry metrics are registered with. When nil a
	// fresh registry is created, so tests and multiple servers never collide.
	Registry *prometheus.Registry
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metric namespace.
func WithNamespace(ns string) Option {
	return func(c *Config) {
		c.Namespace = ns
	}
}

// WithSubsystem sets the metric subsystem.
func WithSubsystem(sub string) Option {
	return func(c *Config) {
		c.Subsystem = sub
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets custom histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry registers the collectors with reg.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = reg
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "starter",
		Buckets:   prometheus.DefBuckets,
	}
}

// Metrics holds the collectors. It implements store.Observer and
// query.Observer so it can be attached to every session's store and client.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	activeSessions prometheus.Gauge
	sessionsTotal  prometheus.Counter
	renders        prometheus.Counter
	renderDuration prometheus.Histogram
	liveFrames     *prometheus.CounterVec
	wsErrors       *prometheus.CounterVec
	storeActions   *prometheus.CounterVec
	queryFetches   *prometheus.CounterVec
	queryInflight  prometheus.Gauge
	queryDuration  *prometheus.HistogramVec
}

// New creates and registers the collectors.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	if len(config.Buckets) == 0 {
		config.Buckets = prometheus.DefBuckets
	}

	factory := promauto.With(config.Registry)
	ns, sub, labels := config.Namespace, config.Subsystem, config.ConstLabels

	return &Metrics{
		registry: config.Registry,

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "http_requests_total",
			Help:        "Total HTTP requests by route pattern, method and status code",
			ConstLabels: labels,
		}, []string{"route", "method", "code"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: labels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "active_sessions",
			Help:        "Number of live sessions",
			ConstLabels: labels,
		}),

		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "sessions_total",
			Help:        "Total live sessions created",
			ConstLabels: labels,
		}),

		renders: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "renders_total",
			Help:        "Total session renders pushed to browsers",
			ConstLabels: labels,
		}),

		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "render_duration_seconds",
			Help:        "Session render duration in seconds",
			ConstLabels: labels,
			Buckets:     config.Buckets,
		}),

		liveFrames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "live_frames_total",
			Help:        "Total frames received from browsers by type",
			ConstLabels: labels,
		}, []string{"type"}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by kind",
			ConstLabels: labels,
		}, []string{"kind"}),

		storeActions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "store_actions_total",
			Help:        "Total store actions by store and action",
			ConstLabels: labels,
		}, []string{"store", "action"}),

		queryFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "query_fetches_total",
			Help:        "Total query fetches by outcome",
			ConstLabels: labels,
		}, []string{"status"}),

		queryInflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "query_fetches_inflight",
			Help:        "Number of query fetches in flight",
			ConstLabels: labels,
		}),

		queryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "query_fetch_duration_seconds",
			Help:        "Query fetch duration in seconds, retries included",
			ConstLabels: labels,
			Buckets:     config.Buckets,
		}, []string{"status"}),
	}
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and durations labeled with the chi
// route pattern, which keeps cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// SessionOpened records a new live session.
func (m *Metrics) SessionOpened() {
	m.sessionsTotal.Inc()
	m.activeSessions.Inc()
}

// SessionClosed records a live session going away.
func (m *Metrics) SessionClosed() {
	m.activeSessions.Dec()
}

// RenderDone records one session render.
func (m *Metrics) RenderDone(elapsed time.Duration) {
	m.renders.Inc()
	m.renderDuration.Observe(elapsed.Seconds())
}

// FrameReceived records an inbound live frame. Unknown types are folded
// into "invalid".
func (m *Metrics) FrameReceived(frameType string) {
	switch frameType {
	case "setUser", "logout", "invalidate", "navigate":
	default:
		frameType = "invalid"
	}
	m.liveFrames.WithLabelValues(frameType).Inc()
}

// WebSocketError records a socket failure of the given kind
// ("upgrade", "read", "write").
func (m *Metrics) WebSocketError(kind string) {
	m.wsErrors.WithLabelValues(kind).Inc()
}

// Observe implements store.Observer.
func (m *Metrics) Observe(e store.Event) {
	m.storeActions.WithLabelValues(e.Store, e.Type).Inc()
}

// FetchStarted implements query.Observer. Keys are not used as labels.
func (m *Metrics) FetchStarted(string) {
	m.queryInflight.Inc()
}

// FetchFinished implements query.Observer.
func (m *Metrics) FetchFinished(_ string, elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.queryInflight.Dec()
	m.queryFetches.WithLabelValues(status).Inc()
	m.queryDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}
