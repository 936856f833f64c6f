// Package vtest provides testing helpers for components.
//
// Render a component tree (components are resolved under the current owner
// and listener) and assert on the HTML:
//
//	html := vtest.RenderToString(home.Page(match))
//	vtest.ExpectContains(t, html, "Welcome")
//
// Query the output the way assistive technology sees it:
//
//	status := vtest.TextByRole(t, html, "status")
//
// Wait for asynchronous work such as a data fetch:
//
//	vtest.Eventually(t, time.Second, func() bool {
//	    return vtest.TextByRole(t, render(), "status") == home.Greeting
//	})
package vtest
