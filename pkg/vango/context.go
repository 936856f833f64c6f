package vango

import "github.com/vango-dev/starter/pkg/vdom"

// Context provides typed dependency injection through the component tree.
//
//	var ThemeContext = vango.CreateContext("light")
//
//	ThemeContext.Provider("dark", Header(), Main())
//
//	func Header() vdom.Component {
//	    return vdom.Func(func() *vdom.VNode {
//	        return vdom.Header(vdom.Class("theme-" + ThemeContext.Use()))
//	    })
//	}
type Context[T any] struct {
	key          *contextKey
	defaultValue T
}

type contextKey struct{ name string }

// CreateContext creates a context whose Use returns defaultValue when no
// Provider encloses the caller.
func CreateContext[T any](defaultValue T) *Context[T] {
	return &Context[T]{key: &contextKey{}, defaultValue: defaultValue}
}

// Named labels the context; the name only shows up when debugging.
func (c *Context[T]) Named(name string) *Context[T] {
	c.key.name = name
	return c
}

// Provider returns a node that renders children with value bound to c.
// Children are resolved eagerly inside the provider's owner so that every
// nested component observes the value, whatever order the arguments were
// built in.
func (c *Context[T]) Provider(value T, children ...any) *vdom.VNode {
	return vdom.Comp(&provider[T]{ctx: c, value: value, children: children})
}

// Use returns the value of the nearest enclosing Provider, or the default.
func (c *Context[T]) Use() T {
	if v := GetContext(c.key); v != nil {
		if typed, ok := v.(T); ok {
			return typed
		}
	}
	return c.defaultValue
}

// Set binds value to c on the current owner without a Provider node. The
// session root uses it for values that must be visible to every render.
func (c *Context[T]) Set(value T) {
	SetContext(c.key, value)
}

// Default returns the default value.
func (c *Context[T]) Default() T {
	return c.defaultValue
}

type provider[T any] struct {
	ctx      *Context[T]
	value    T
	children []any
}

func (p *provider[T]) Render() *vdom.VNode {
	owner := NewOwner(CurrentOwner())
	defer owner.Dispose()
	owner.SetValue(p.ctx.key, p.value)

	var out *vdom.VNode
	WithOwner(owner, func() {
		out = Resolve(vdom.Fragment(p.children...))
	})
	return out
}

// Resolve renders every component node in the tree under the current owner
// and listener, returning a tree made only of elements, text, raw HTML and
// fragments. The input tree is not modified.
func Resolve(node *vdom.VNode) *vdom.VNode {
	if node == nil {
		return nil
	}
	switch node.Kind {
	case vdom.KindComponent:
		if node.Comp == nil {
			return nil
		}
		return Resolve(node.Comp.Render())
	case vdom.KindElement, vdom.KindFragment:
		out := *node
		out.Children = make([]*vdom.VNode, 0, len(node.Children))
		for _, child := range node.Children {
			if r := Resolve(child); r != nil {
				out.Children = append(out.Children, r)
			}
		}
		return &out
	default:
		return node
	}
}
