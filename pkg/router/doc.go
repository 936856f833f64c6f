// Package router maps URL paths to page components.
//
// A Router is a fixed table of named routes compiled onto a chi tree:
//
//	routes := router.New([]router.Route{
//	    {Name: "home", Pattern: "/", Title: "home:title", Page: home.Page},
//	    {Name: "user", Pattern: "/users/{id}", Page: users.Show},
//	}, router.WithNotFound(notFound))
//	routes.Mount(mux, pageHandler)
//
// Each live session holds a Location, the reactive current path. Outlet
// renders the page matching the Location in context; navigating sets the
// path and re-renders the outlet.
package router
