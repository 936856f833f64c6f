package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/starter/pkg/render"
	"github.com/vango-dev/starter/pkg/vango"
	"github.com/vango-dev/starter/pkg/vdom"
)

func testRoutes() []Route {
	return []Route{
		{Name: "home", Pattern: "/", Page: func(Match) *vdom.VNode { return vdom.H1("home") }},
		{Name: "user", Pattern: "/users/{id}", Page: func(m Match) *vdom.VNode { return vdom.H1("user " + m.Param("id")) }},
	}
}

func TestMatch(t *testing.T) {
	r := New(testRoutes())

	tests := []struct {
		path      string
		wantRoute string
		wantParam string
		wantOK    bool
	}{
		{"/", "home", "", true},
		{"/users/42", "user", "42", true},
		{"/users/42/", "user", "42", true},
		{"//users//7", "user", "7", true},
		{"/users/42?tab=posts", "user", "42", true},
		{"/missing", "", "", false},
		{"/../etc", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m, ok := r.Match(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("Match(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if m.Route.Name != tt.wantRoute {
				t.Errorf("route = %q, want %q", m.Route.Name, tt.wantRoute)
			}
			if got := m.Param("id"); got != tt.wantParam {
				t.Errorf("id = %q, want %q", got, tt.wantParam)
			}
		})
	}
}

func TestNewPanics(t *testing.T) {
	page := func(Match) *vdom.VNode { return nil }
	cases := map[string][]Route{
		"duplicate name":    {{Name: "a", Pattern: "/a", Page: page}, {Name: "a", Pattern: "/b", Page: page}},
		"duplicate pattern": {{Name: "a", Pattern: "/a", Page: page}, {Name: "b", Pattern: "/a", Page: page}},
		"missing page":      {{Name: "a", Pattern: "/a"}},
	}
	for name, routes := range cases {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			New(routes)
		})
	}
}

func TestRoutesAndLookup(t *testing.T) {
	r := New(testRoutes())
	routes := r.Routes()
	if len(routes) != 2 || routes[0].Name != "home" || routes[1].Pattern != "/users/{id}" {
		t.Errorf("unexpected routes %+v", routes)
	}
	if _, ok := r.Lookup("user"); !ok {
		t.Error("expected to find route user")
	}
	if _, ok := r.Lookup("nope"); ok {
		t.Error("did not expect route nope")
	}
}

func TestRenderNotFound(t *testing.T) {
	r := New(testRoutes(), WithNotFound(func(m Match) *vdom.VNode {
		return vdom.P("no page at " + m.Path)
	}))
	if got := render.String(r.Render("/nope")); got != "<p>no page at /nope</p>" {
		t.Errorf("unexpected not-found render %q", got)
	}
}

func TestMount(t *testing.T) {
	r := New(testRoutes())
	mux := chi.NewRouter()

	var got Match
	r.Mount(mux, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		got, _ = FromRequest(req)
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/9", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got.Route == nil || got.Route.Name != "user" || got.Param("id") != "9" {
		t.Errorf("unexpected match %+v", got)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestOutletFollowsLocation(t *testing.T) {
	r := New(testRoutes())
	loc := r.NewLocation("/")

	renders := 0
	listener := vango.NewListenerFunc(func() { renders++ })
	tree := Provider(loc)

	var html string
	vango.WithListener(listener, func() {
		html = render.String(vango.Resolve(tree))
	})
	if html != "<h1>home</h1>" {
		t.Fatalf("unexpected first render %q", html)
	}

	if err := loc.Navigate("/users/5"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if renders != 1 {
		t.Errorf("expected the outlet to be notified once, got %d", renders)
	}
	html = render.String(vango.Resolve(tree))
	if html != "<h1>user 5</h1>" {
		t.Errorf("unexpected render after navigate %q", html)
	}

	if err := loc.Navigate("https://evil.example"); err == nil {
		t.Error("expected absolute URL to be rejected")
	}
	if loc.Path() != "/users/5" {
		t.Errorf("rejected navigation must not move, got %q", loc.Path())
	}
}

func TestOutletWithoutLocation(t *testing.T) {
	if got := vango.Resolve(Outlet()); got != nil {
		t.Errorf("expected nil without a location, got %v", got)
	}
	if _, ok := UseMatch(); ok {
		t.Error("expected no match without a location")
	}
}

func TestLink(t *testing.T) {
	got := render.String(Link("/users/1", "Ada"))
	want := `<a data-link="true" href="/users/1">Ada</a>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
