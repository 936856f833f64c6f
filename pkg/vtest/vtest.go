package vtest

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/vango-dev/starter/pkg/render"
	"github.com/vango-dev/starter/pkg/vango"
	"github.com/vango-dev/starter/pkg/vdom"
)

// RenderToString resolves components in node and renders it to HTML.
func RenderToString(node *vdom.VNode) string {
	out, err := render.NewRenderer().RenderToString(vango.Resolve(node))
	if err != nil {
		return "<!-- render error: " + err.Error() + " -->"
	}
	return out
}

// ExpectContains asserts that html contains expected.
func ExpectContains(t testing.TB, html, expected string) {
	t.Helper()
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that html does not contain unexpected.
func ExpectNotContains(t testing.TB, html, unexpected string) {
	t.Helper()
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output NOT to contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// Element is one element found in rendered HTML.
type Element struct {
	Tag   string
	Attrs map[string]string
	Text  string
}

// implicitRoles maps tags to the ARIA role they carry without a role
// attribute.
var implicitRoles = map[string]string{
	"h1":     "heading",
	"h2":     "heading",
	"h3":     "heading",
	"button": "button",
	"a":      "link",
	"nav":    "navigation",
	"main":   "main",
	"header": "banner",
	"footer": "contentinfo",
	"form":   "form",
	"ul":     "list",
	"li":     "listitem",
}

// QueryAllByRole returns every element in src with the given ARIA role,
// explicit or implicit, in document order.
func QueryAllByRole(src, role string) []Element {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil
	}
	var out []Element
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && roleOf(n) == role {
			out = append(out, toElement(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

// GetByRole returns the single element with role, failing the test when
// there is not exactly one.
func GetByRole(t testing.TB, src, role string) Element {
	t.Helper()
	found := QueryAllByRole(src, role)
	if len(found) != 1 {
		t.Fatalf("expected exactly one element with role %q, found %d in:\n%s", role, len(found), truncate(src, 500))
	}
	return found[0]
}

// TextByRole returns the trimmed text of the single element with role.
func TextByRole(t testing.TB, src, role string) string {
	t.Helper()
	return GetByRole(t, src, role).Text
}

// Eventually polls cond until it returns true or timeout elapses.
func Eventually(t testing.TB, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s", timeout)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func roleOf(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "role" {
			return a.Val
		}
	}
	return implicitRoles[n.Data]
}

func toElement(n *html.Node) Element {
	el := Element{Tag: n.Data, Attrs: make(map[string]string, len(n.Attr))}
	for _, a := range n.Attr {
		el.Attrs[a.Key] = a.Val
	}
	var b strings.Builder
	var text func(*html.Node)
	text = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			text(c)
		}
	}
	text(n)
	el.Text = strings.Join(strings.Fields(b.String()), " ")
	return el
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
