package router

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/starter/pkg/vdom"
)

// PageFunc renders the page of a matched route.
type PageFunc func(m Match) *vdom.VNode

// Route is one entry of the route table.
type Route struct {
	// Name identifies the route, e.g. for the routes command.
	Name string

	// Pattern is a chi pattern such as "/" or "/users/{id}".
	Pattern string

	// Title is a translation key for the document title.
	Title string

	Page PageFunc
}

// Match is the result of matching a path.
type Match struct {
	Route  *Route
	Path   string
	Params map[string]string
}

// Param returns the named URL parameter.
func (m Match) Param(name string) string {
	return m.Params[name]
}

// Router is an immutable route table.
type Router struct {
	routes    []*Route
	byPattern map[string]*Route
	tree      *chi.Mux
	notFound  PageFunc
}

// Option configures a Router.
type Option func(*Router)

// WithNotFound sets the page rendered when no route matches.
func WithNotFound(page PageFunc) Option {
	return func(r *Router) { r.notFound = page }
}

// New compiles routes. Duplicate names or patterns and routes without a
// page are programming errors and panic.
func New(routes []Route, opts ...Option) *Router {
	r := &Router{
		byPattern: make(map[string]*Route, len(routes)),
		tree:      chi.NewRouter(),
		notFound:  defaultNotFound,
	}
	for _, opt := range opts {
		opt(r)
	}

	names := make(map[string]bool, len(routes))
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for i := range routes {
		rt := routes[i]
		switch {
		case rt.Page == nil:
			panic(fmt.Sprintf("router: route %q has no page", rt.Name))
		case names[rt.Name]:
			panic(fmt.Sprintf("router: duplicate route name %q", rt.Name))
		case r.byPattern[rt.Pattern] != nil:
			panic(fmt.Sprintf("router: duplicate route pattern %q", rt.Pattern))
		}
		names[rt.Name] = true
		r.routes = append(r.routes, &rt)
		r.byPattern[rt.Pattern] = &rt
		r.tree.Get(rt.Pattern, noop)
	}
	return r
}

func defaultNotFound(m Match) *vdom.VNode {
	return vdom.Main(vdom.H1("Not found"), vdom.P(m.Path))
}

// Routes returns the route table in registration order.
func (r *Router) Routes() []Route {
	out := make([]Route, len(r.routes))
	for i, rt := range r.routes {
		out[i] = *rt
	}
	return out
}

// Lookup returns the route with the given name.
func (r *Router) Lookup(name string) (Route, bool) {
	for _, rt := range r.routes {
		if rt.Name == name {
			return *rt, true
		}
	}
	return Route{}, false
}

// Match finds the route for path. The query string, if any, is ignored.
func (r *Router) Match(path string) (Match, bool) {
	canonical, _, _, err := CanonicalizePath(path)
	if err != nil {
		return Match{Path: path}, false
	}

	rctx := chi.NewRouteContext()
	if !r.tree.Match(rctx, http.MethodGet, canonical) {
		return Match{Path: canonical}, false
	}
	rt := r.byPattern[rctx.RoutePattern()]
	if rt == nil {
		return Match{Path: canonical}, false
	}

	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		params[key] = rctx.URLParams.Values[i]
	}
	return Match{Route: rt, Path: canonical, Params: params}, true
}

// Render renders the page for path, or the not-found page.
func (r *Router) Render(path string) *vdom.VNode {
	m, ok := r.Match(path)
	if !ok {
		return r.notFound(m)
	}
	return m.Route.Page(m)
}

type matchKey struct{}

// Mount registers every route pattern on mux with h. The matched route is
// available to h through FromRequest.
func (r *Router) Mount(mux chi.Router, h http.Handler) {
	for _, rt := range r.routes {
		rt := rt
		mux.Method(http.MethodGet, rt.Pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			params := map[string]string{}
			if rctx := chi.RouteContext(req.Context()); rctx != nil {
				for i, key := range rctx.URLParams.Keys {
					params[key] = rctx.URLParams.Values[i]
				}
			}
			m := Match{Route: rt, Path: req.URL.Path, Params: params}
			h.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), matchKey{}, m)))
		}))
	}
}

// FromRequest returns the Match stored by Mount.
func FromRequest(req *http.Request) (Match, bool) {
	m, ok := req.Context().Value(matchKey{}).(Match)
	return m, ok
}
