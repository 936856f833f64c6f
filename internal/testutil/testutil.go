// Package testutil renders components under the same providers a live
// session sets up.
package testutil

import (
	"context"
	"testing"

	"golang.org/x/text/language"

	"github.com/vango-dev/starter/internal/i18n"
	"github.com/vango-dev/starter/internal/store/user"
	"github.com/vango-dev/starter/pkg/query"
	"github.com/vango-dev/starter/pkg/router"
	"github.com/vango-dev/starter/pkg/vango"
	"github.com/vango-dev/starter/pkg/vdom"
	"github.com/vango-dev/starter/pkg/vtest"
)

// Providers are the collaborators a render sees through context.
type Providers struct {
	Translator *i18n.Translator
	Client     *query.Client
	Users      *user.Store
	Location   *router.Location
	Owner      *vango.Owner
}

type settings struct {
	locale string
	path   string
	routes *router.Router
	client *query.Client
	users  *user.Store
}

// Option adjusts RenderWithProviders.
type Option func(*settings)

// WithLocale selects the translation locale (default en-US).
func WithLocale(locale string) Option {
	return func(s *settings) { s.locale = locale }
}

// WithRoutes sets the route table and starting path of the Location.
func WithRoutes(r *router.Router, path string) Option {
	return func(s *settings) {
		s.routes = r
		s.path = path
	}
}

// WithClient uses c instead of a fresh query client.
func WithClient(c *query.Client) Option {
	return func(s *settings) { s.client = c }
}

// WithUsers uses u instead of a fresh user store.
func WithUsers(u *user.Store) Option {
	return func(s *settings) { s.users = u }
}

// RenderWithProviders returns a function rendering component to HTML with
// translations from the embedded catalogs, a query client, a user store and
// a router location in context. Each call renders again, so tests can poll
// it while fetches settle.
func RenderWithProviders(t testing.TB, component func() *vdom.VNode, opts ...Option) (func() string, *Providers) {
	t.Helper()

	s := settings{locale: i18n.BaseLocale, path: "/"}
	for _, opt := range opts {
		opt(&s)
	}

	files, err := i18n.Embedded().Files(context.Background())
	if err != nil {
		t.Fatalf("read embedded catalogs: %v", err)
	}
	bundle, err := i18n.Parse(files, i18n.BaseLocale)
	if err != nil {
		t.Fatalf("parse embedded catalogs: %v", err)
	}

	p := &Providers{
		Translator: i18n.NewTranslator(i18n.Loaded(bundle), language.MustParse(s.locale)),
		Client:     s.client,
		Users:      s.users,
		Owner:      vango.NewOwner(nil),
	}
	if p.Client == nil {
		ctx, cancel := context.WithCancel(context.Background())
		p.Client = query.NewClient(ctx)
		t.Cleanup(func() {
			cancel()
			p.Client.Close()
		})
	}
	if p.Users == nil {
		p.Users = user.New()
	}
	if s.routes == nil {
		s.routes = router.New([]router.Route{{
			Name:    "test",
			Pattern: "/",
			Page:    func(router.Match) *vdom.VNode { return vdom.Comp(vdom.Func(component)) },
		}})
	}
	p.Location = s.routes.NewLocation(s.path)
	t.Cleanup(p.Owner.Dispose)

	vango.WithOwner(p.Owner, func() {
		user.Context.Set(p.Users)
	})

	render := func() string {
		var out string
		vango.WithOwner(p.Owner, func() {
			out = vtest.RenderToString(
				i18n.Context.Provider(p.Translator,
					query.Context.Provider(p.Client,
						router.Provider(p.Location, vdom.Comp(vdom.Func(component))))),
			)
		})
		return out
	}
	return render, p
}
