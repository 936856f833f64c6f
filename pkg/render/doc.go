// Package render writes vdom trees as HTML.
//
// Text is escaped, attributes are written in sorted order so output is
// deterministic, boolean attributes render as bare names and void elements
// have no closing tag. Component nodes are rendered by calling Render; callers
// that rely on context providers resolve the tree with vango.Resolve first.
package render
