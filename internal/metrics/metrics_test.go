package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/starter/pkg/query"
	"github.com/vango-dev/starter/pkg/store"
)

var (
	_ store.Observer = (*Metrics)(nil)
	_ query.Observer = (*Metrics)(nil)
)

func TestSessionsGauge(t *testing.T) {
	m := New()
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeSessions))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessionsTotal))
}

func TestStoreActions(t *testing.T) {
	m := New()
	s := store.New("user-store", 0, store.WithObserver(m))
	s.SetState("user-store/user/setUser", 1)
	s.SetState("user-store/user/setUser", 2)
	s.SetState("user-store/user/logout", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.storeActions.WithLabelValues("user-store", "user-store/user/setUser")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeActions.WithLabelValues("user-store", "user-store/user/logout")))
}

func TestQueryFetches(t *testing.T) {
	m := New()
	m.FetchStarted("a")
	m.FetchStarted("b")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.queryInflight))

	m.FetchFinished("a", 10*time.Millisecond, nil)
	m.FetchFinished("b", 10*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 0.0, testutil.ToFloat64(m.queryInflight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queryFetches.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queryFetches.WithLabelValues("error")))
}

func TestFrameReceivedFoldsUnknownTypes(t *testing.T) {
	m := New()
	m.FrameReceived("logout")
	m.FrameReceived("drop-tables")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.liveFrames.WithLabelValues("logout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.liveFrames.WithLabelValues("invalid")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.liveFrames.WithLabelValues("drop-tables")))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/users/{id}", "GET", "418")))
}

func TestHandlerExposesNamespace(t *testing.T) {
	m := New(WithConstLabels(prometheus.Labels{"app": "test"}))
	m.RenderDone(5 * time.Millisecond)
	m.WebSocketError("read")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(body, `starter_renders_total{app="test"} 1`), body)
	assert.Contains(t, body, `starter_websocket_errors_total{app="test",kind="read"} 1`)
}

func TestSeparateRegistriesDoNotCollide(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(WithRegistry(reg))
	b := New(WithNamespace("other"), WithRegistry(reg))
	assert.Same(t, reg, a.Registry())
	assert.Same(t, reg, b.Registry())

	assert.NotPanics(t, func() { New() })
	assert.NotPanics(t, func() { New() })
}
