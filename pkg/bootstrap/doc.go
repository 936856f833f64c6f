// Package bootstrap gates the first render of a live session on resource
// readiness and renders the HTML page shell around the application.
//
// A Gate starts NotReady and renders nothing. When its Initializer (the
// translation loader) reports ready, the gate updates the Document (lang
// attribute, "i18n-loading" class removed) and switches to Ready exactly
// once; from then on it renders the provider tree.
//
//	gate := bootstrap.NewGate(ctx, translator, doc, session.Dispatch, func() *vdom.VNode {
//	    return i18n.Context.Provider(translator,
//	        query.Context.Provider(client, routes.Outlet()))
//	})
//
// A Shell is the static index.html the application is mounted into. It
// must contain the mount container; ParseShell fails with E100 otherwise.
package bootstrap
