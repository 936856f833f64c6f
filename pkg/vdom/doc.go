// Package vdom defines the virtual node tree rendered by the starter
// application and the element, attribute and control-flow helpers used to
// build it.
//
//	vdom.Div(vdom.Class("card"),
//	    vdom.H1("Welcome"),
//	    vdom.If(loading, vdom.P(vdom.Role("status"), "Loading...")),
//	)
//
// Element helpers accept any mix of Attr, []Attr, *VNode, []*VNode,
// Component and string (a text child). nil arguments are skipped so
// conditional children can be inlined.
package vdom
