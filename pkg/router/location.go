package router

import (
	"github.com/vango-dev/starter/pkg/vango"
	"github.com/vango-dev/starter/pkg/vdom"
)

// Location is a session's current path.
type Location struct {
	router *Router
	path   *vango.Signal[string]
}

// NewLocation starts a location at path.
func (r *Router) NewLocation(path string) *Location {
	if canonical, _, _, err := CanonicalizePath(path); err == nil {
		path = canonical
	}
	return &Location{router: r, path: vango.NewSignal(path)}
}

// Router returns the route table the location resolves against.
func (l *Location) Router() *Router { return l.router }

// Path returns the current path, tracked.
func (l *Location) Path() string { return l.path.Get() }

// Navigate moves to target, which must be a site-relative path.
func (l *Location) Navigate(target string) error {
	path, err := ValidateNavPath(target)
	if err != nil {
		return err
	}
	l.path.Set(path)
	return nil
}

// Match resolves the current path, tracked.
func (l *Location) Match() (Match, bool) {
	return l.router.Match(l.Path())
}

// Context carries the session Location to Outlet and Link.
var Context = vango.CreateContext[*Location](nil).Named("router")

// Provider renders children with loc in context, followed by an Outlet
// when no children are given.
func Provider(loc *Location, children ...any) *vdom.VNode {
	if len(children) == 0 {
		children = []any{Outlet()}
	}
	return Context.Provider(loc, children...)
}

// Outlet renders the page matching the Location in context.
func Outlet() *vdom.VNode {
	return vdom.Comp(vdom.Func(func() *vdom.VNode {
		loc := Context.Use()
		if loc == nil {
			return nil
		}
		return loc.router.Render(loc.Path())
	}))
}

// UseMatch returns the current match from context.
func UseMatch() (Match, bool) {
	loc := Context.Use()
	if loc == nil {
		return Match{}, false
	}
	return loc.Match()
}

// Link creates an anchor the live client turns into in-session navigation.
func Link(href string, children ...any) *vdom.VNode {
	args := append([]any{vdom.Href(href), vdom.Data("link", "true")}, children...)
	return vdom.A(args...)
}
