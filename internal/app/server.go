package app

import (
	"bytes"
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/starter/internal/config"
	"github.com/vango-dev/starter/internal/devtools"
	"github.com/vango-dev/starter/internal/errors"
	"github.com/vango-dev/starter/internal/i18n"
	"github.com/vango-dev/starter/internal/metrics"
	"github.com/vango-dev/starter/pkg/bootstrap"
	"github.com/vango-dev/starter/pkg/query"
	"github.com/vango-dev/starter/pkg/router"
)

//go:embed web
var webFS embed.FS

// LiveScript is where the live client is served.
const LiveScript = "/static/live.js"

// LoadShell reads the HTML shell from path, or the embedded one when path
// is empty, and checks it has the mount container.
func LoadShell(path, mountID string) (*bootstrap.Shell, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = webFS.ReadFile("web/index.html")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.New(errors.CodeShellUnreadable).WithDetailf("read %s", shellName(path)).Wrap(err)
	}
	return bootstrap.ParseShell(bytes.NewReader(data), mountID)
}

func shellName(path string) string {
	if path == "" {
		return "embedded index.html"
	}
	return path
}

// Deps are the process-wide collaborators of a Server.
type Deps struct {
	// Shell is loaded from the config when nil.
	Shell *bootstrap.Shell

	// Resources defaults to loading the embedded catalogs.
	Resources *i18n.Resources

	// Metrics is created when nil.
	Metrics *metrics.Metrics

	Logger *slog.Logger
	Tracer trace.Tracer
}

// Server is the HTTP surface: routed pages, the live socket, the client
// script, health, metrics and devtools.
type Server struct {
	cfg        *config.Config
	shell      *bootstrap.Shell
	routes     *router.Router
	negotiator *i18n.Negotiator
	manager    *Manager
	metrics    *metrics.Metrics
	inspector  *devtools.Inspector
	logger     *slog.Logger
	handler    http.Handler
}

// New builds a Server from cfg.
func New(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Shell == nil {
		shell, err := LoadShell(cfg.Server.Shell, cfg.Server.MountID)
		if err != nil {
			return nil, err
		}
		deps.Shell = shell
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Resources == nil {
		deps.Resources = i18n.Load(context.Background(), i18n.Embedded(), i18n.LoadOptions{
			BaseLocale: i18n.BaseLocale,
			Logger:     deps.Logger,
		})
	}

	s := &Server{
		cfg:        cfg,
		shell:      deps.Shell,
		routes:     Routes(),
		negotiator: i18n.NewNegotiator(cfg.I18n.Supported...),
		metrics:    deps.Metrics,
		logger:     deps.Logger.With("component", "server"),
	}
	if cfg.Devtools.Enabled {
		s.inspector = devtools.NewInspector(cfg.Devtools.BufferSize, deps.Logger)
	}

	s.manager = NewManager(Options{
		AppName:   cfg.Name,
		Router:    s.routes,
		Resources: deps.Resources,
		Query: query.Defaults{
			StaleTime:  cfg.QueryStaleTime(),
			Retry:      cfg.Query.Retry,
			RetryDelay: cfg.QueryRetryDelay(),
		},
		Metrics:   s.metrics,
		Inspector: s.inspector,
		Logger:    deps.Logger,
		Tracer:    deps.Tracer,
	}, ManagerConfig{
		TTL:         cfg.SessionTTL(),
		MaxSessions: cfg.Session.MaxSessions,
	})

	s.handler = s.buildRouter(deps.Logger)
	return s, nil
}

func (s *Server) buildRouter(logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(router.Canonical)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Get("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Method(http.MethodGet, "/_live", newLiveHandler(s.manager, s.metrics, logger))

	static, _ := fs.Sub(webFS, "web")
	r.Get(LiveScript, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFileFS(w, req, static, "live.js")
	})

	if s.inspector != nil {
		r.Method(http.MethodGet, "/__devtools/events", s.inspector)
	}

	s.routes.Mount(r, http.HandlerFunc(s.servePage))
	r.NotFound(s.servePage)
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Manager returns the session manager.
func (s *Server) Manager() *Manager { return s.manager }

// Routes returns the route table.
func (s *Server) Routes() *router.Router { return s.routes }

// Inspector returns the devtools inspector, or nil when disabled.
func (s *Server) Inspector() *devtools.Inspector { return s.inspector }

// Shutdown closes every live session.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.manager.Shutdown(ctx)
}

// servePage starts a session and writes its first render inside the shell.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	tag, persist := s.negotiator.ResolveTag(r)
	if persist {
		i18n.SetLanguageCookie(w, tag)
	}

	sess, err := s.manager.Create(tag, r.URL.Path)
	if err != nil {
		s.logger.Warn("create session", "error", err)
		http.Error(w, "too many live sessions", http.StatusServiceUnavailable)
		return
	}

	frame, err := sess.Snapshot(r.Context())
	if err != nil {
		s.manager.Close(sess.ID)
		s.logger.Warn("first render", "session_id", sess.ID, "error", err)
		return
	}

	status := http.StatusOK
	if _, ok := router.FromRequest(r); !ok {
		status = http.StatusNotFound
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Add("Vary", "Accept-Language, Cookie")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}

	if err := s.shell.Render(w, bootstrap.Page{
		Lang:       frame.Lang,
		Class:      frame.Class,
		Title:      frame.Title,
		Body:       frame.HTML,
		MountAttrs: map[string]string{"data-session": sess.ID},
		Scripts:    []string{LiveScript},
	}); err != nil {
		s.logger.Error("render shell", "session_id", sess.ID, "error", err)
	}
}

// requestLogger logs one line per request with slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("component", "http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.LogAttrs(r.Context(), slog.LevelDebug, "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
