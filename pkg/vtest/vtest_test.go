package vtest

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/starter/pkg/vdom"
)

func page() *vdom.VNode {
	return vdom.Div(
		vdom.Header(vdom.H1("Welcome"), vdom.P("intro")),
		vdom.Comp(vdom.Func(func() *vdom.VNode {
			return vdom.P(vdom.Role("status"), vdom.AriaLive("polite"), "  Loading...  ")
		})),
		vdom.Button("Go"),
	)
}

func TestRenderToStringResolvesComponents(t *testing.T) {
	html := RenderToString(page())
	ExpectContains(t, html, `<p aria-live="polite" role="status">`)
	ExpectNotContains(t, html, "render error")
}

func TestQueryByRole(t *testing.T) {
	html := RenderToString(page())

	if got := TextByRole(t, html, "status"); got != "Loading..." {
		t.Errorf("expected status text Loading..., got %q", got)
	}
	if got := TextByRole(t, html, "heading"); got != "Welcome" {
		t.Errorf("expected heading Welcome, got %q", got)
	}
	el := GetByRole(t, html, "status")
	if el.Tag != "p" || el.Attrs["aria-live"] != "polite" {
		t.Errorf("unexpected element %+v", el)
	}
	if n := len(QueryAllByRole(html, "button")); n != 1 {
		t.Errorf("expected 1 button, got %d", n)
	}
	if n := len(QueryAllByRole(html, "dialog")); n != 0 {
		t.Errorf("expected no dialog, got %d", n)
	}
}

func TestEventually(t *testing.T) {
	var n int32
	go func() {
		time.Sleep(20 * time.Millisecond)
		atomic.StoreInt32(&n, 1)
	}()
	Eventually(t, time.Second, func() bool { return atomic.LoadInt32(&n) == 1 })
}
