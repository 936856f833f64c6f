package vdom

import "testing"

func TestElementArgs(t *testing.T) {
	node := Div(ID("main"), Class("a"), Class("b"), "hello", nil, P("child"),
		[]*VNode{Span("x"), nil}, []Attr{Role("status")})

	if node.Kind != KindElement || node.Tag != "div" {
		t.Fatalf("expected div element, got %v %q", node.Kind, node.Tag)
	}
	if id, _ := node.Attr("id"); id != "main" {
		t.Errorf("expected id main, got %v", id)
	}
	if class, _ := node.Attr("class"); class != "a b" {
		t.Errorf("expected merged class, got %v", class)
	}
	if role, _ := node.Attr("role"); role != "status" {
		t.Errorf("expected role status, got %v", role)
	}
	if len(node.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(node.Children))
	}
	if got := node.TextContent(); got != "hellochildx" {
		t.Errorf("expected text content hellochildx, got %q", got)
	}
}

func TestComponentChild(t *testing.T) {
	c := Func(func() *VNode { return Text("rendered") })
	node := Div(c)

	if len(node.Children) != 1 || node.Children[0].Kind != KindComponent {
		t.Fatalf("expected one component child, got %+v", node.Children)
	}
	if got := node.Children[0].Comp.Render().Text; got != "rendered" {
		t.Errorf("expected rendered, got %q", got)
	}
	if Comp(nil) != nil {
		t.Error("expected Comp(nil) to be nil")
	}
}

func TestConditionals(t *testing.T) {
	yes, no := Text("yes"), Text("no")

	if If(false, yes) != nil || If(true, yes) != yes {
		t.Error("If returned the wrong node")
	}
	if IfElse(false, yes, no) != no || IfElse(true, yes, no) != yes {
		t.Error("IfElse returned the wrong node")
	}
	called := false
	When(false, func() *VNode { called = true; return yes })
	if called {
		t.Error("When must not call fn when the condition is false")
	}
}

func TestRange(t *testing.T) {
	nodes := Range([]string{"a", "", "c"}, func(s string, _ int) *VNode {
		if s == "" {
			return nil
		}
		return Li(s)
	})
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	if Ul(nodes).TextContent() != "ac" {
		t.Errorf("unexpected text %q", Ul(nodes).TextContent())
	}
}

func TestKindString(t *testing.T) {
	if KindElement.String() != "Element" || KindRaw.String() != "Raw" || VKind(99).String() != "Unknown" {
		t.Error("unexpected VKind strings")
	}
	if !IsVoidElement("input") || IsVoidElement("div") {
		t.Error("unexpected void element classification")
	}
}
