package render

import (
	"strings"
	"testing"

	"github.com/vango-dev/starter/pkg/vdom"
)

func TestRenderText(t *testing.T) {
	html, err := NewRenderer().RenderToString(vdom.Text("Hello, World!"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != "Hello, World!" {
		t.Errorf("got %q, want %q", html, "Hello, World!")
	}
}

func TestRenderTextEscaping(t *testing.T) {
	html := String(vdom.Text("<script>alert('xss')</script>"))

	if strings.Contains(html, "<script>") {
		t.Errorf("HTML should be escaped, got %q", html)
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Errorf("should contain escaped script tag, got %q", html)
	}
}

func TestRenderElement(t *testing.T) {
	node := vdom.Div(vdom.Class("container"),
		vdom.H1("Title"),
		vdom.P(vdom.Text("Content")),
	)
	html := String(node)

	want := `<div class="container"><h1>Title</h1><p>Content</p></div>`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderAttributesSorted(t *testing.T) {
	node := vdom.P(vdom.Role("status"), vdom.AriaLive("polite"), vdom.Class("muted"), "Loading...")
	html := String(node)

	want := `<p aria-live="polite" class="muted" role="status">Loading...</p>`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderClassMerge(t *testing.T) {
	html := String(vdom.Div(vdom.Class("a"), vdom.Class("b", "c")))
	if html != `<div class="a b c"></div>` {
		t.Errorf("classes should merge, got %q", html)
	}
}

func TestRenderVoidElements(t *testing.T) {
	tests := []struct {
		name string
		node *vdom.VNode
		want string
	}{
		{
			name: "input",
			node: vdom.Input(vdom.Type("text"), vdom.Name("username"), vdom.Required()),
			want: `<input name="username" required type="text">`,
		},
		{
			name: "meta",
			node: vdom.Meta(vdom.Name("viewport")),
			want: `<meta name="viewport">`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := String(tt.node); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderAttributeEscaping(t *testing.T) {
	html := String(vdom.A(vdom.Href(`/x?a=1&b="2"`), "link"))
	if !strings.Contains(html, `href="/x?a=1&amp;b=&quot;2&quot;"`) {
		t.Errorf("attribute should be escaped, got %q", html)
	}
}

func TestRenderFragmentAndComponent(t *testing.T) {
	greeting := vdom.Func(func() *vdom.VNode {
		return vdom.Span("hi")
	})
	node := vdom.Fragment("a", greeting, vdom.If(false, vdom.Span("hidden")), vdom.Raw("<b>b</b>"))

	if got := String(node); got != "a<span>hi</span><b>b</b>" {
		t.Errorf("got %q", got)
	}
}

func TestRenderNil(t *testing.T) {
	html, err := NewRenderer().RenderToString(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != "" {
		t.Errorf("nil node should render empty, got %q", html)
	}
}

func TestRenderElementWithoutTag(t *testing.T) {
	_, err := NewRenderer().RenderToString(&vdom.VNode{Kind: vdom.KindElement})
	if err == nil {
		t.Error("expected error for element without tag")
	}
}

func TestBooleanAriaAttribute(t *testing.T) {
	node := vdom.Div(vdom.Attr{Key: "aria-busy", Value: true}, vdom.Attr{Key: "hidden", Value: false})
	if got := String(node); got != `<div aria-busy="true"></div>` {
		t.Errorf("got %q", got)
	}
}
