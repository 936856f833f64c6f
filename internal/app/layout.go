package app

import (
	"github.com/vango-dev/starter/internal/app/pages/home"
	"github.com/vango-dev/starter/internal/i18n"
	"github.com/vango-dev/starter/internal/store/user"
	"github.com/vango-dev/starter/pkg/router"
	"github.com/vango-dev/starter/pkg/vdom"
)

// Routes returns the application's route table.
func Routes() *router.Router {
	return router.New([]router.Route{
		{Name: "home", Pattern: "/", Title: "home:title", Page: home.Page},
	}, router.WithNotFound(NotFound))
}

// Layout wraps the routed page with the account bar. It renders lazily so
// translations resolve inside the providers.
func Layout() *vdom.VNode {
	return vdom.Comp(vdom.Func(func() *vdom.VNode {
		return vdom.Div(vdom.Class("app"),
			vdom.Nav(vdom.Class("app-nav"), AccountBar()),
			vdom.Main(router.Outlet()),
		)
	}))
}

// AccountBar shows who is signed in, reading the user store through its
// selectors so only identity changes re-render it.
func AccountBar() *vdom.VNode {
	return vdom.Comp(vdom.Func(func() *vdom.VNode {
		users := user.Context.Use()
		if users == nil {
			return nil
		}

		if users.IsLoggedIn() {
			return vdom.Div(vdom.Class("account"),
				vdom.Span(vdom.Data("testid", "account-status"),
					i18n.Tf("common:account.signedIn", map[string]any{"username": users.Username()})),
				vdom.Button(vdom.Type("button"), vdom.Data("action", "logout"),
					i18n.T("common:account.signOut")),
			)
		}

		return vdom.Form(vdom.Class("account"), vdom.Data("action", "setUser"),
			vdom.Span(vdom.Data("testid", "account-status"), i18n.T("common:account.signedOut")),
			vdom.Label(
				i18n.T("common:account.usernameLabel"),
				vdom.Input(vdom.Type("text"), vdom.Name("username"), vdom.Required()),
			),
			vdom.Button(vdom.Type("submit"), i18n.T("common:account.signIn")),
		)
	}))
}

// NotFound is rendered for paths no route matches.
func NotFound(m router.Match) *vdom.VNode {
	return vdom.Div(vdom.Class("not-found"),
		vdom.H1(i18n.T("common:notFound.title")),
		vdom.P(i18n.Tf("common:notFound.description", map[string]any{"path": m.Path})),
		router.Link("/", i18n.T("common:notFound.home")),
	)
}
