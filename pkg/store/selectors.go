package store

import (
	"fmt"
	"sort"

	"github.com/vango-dev/starter/pkg/vango"
)

// Selector is a per-field view of a store. Get subscribes the current
// listener to the selected value only; it is re-notified when that value
// changes, not when other fields do.
type Selector[V any] struct {
	sig   *vango.Signal[V]
	unsub func()
}

// Select derives a Selector from s. The selected value is recomputed after
// every transition; equal values (== for scalars, reflect.DeepEqual
// otherwise) do not notify.
func Select[S, V any](s *Store[S], get func(S) V) *Selector[V] {
	sel := &Selector[V]{sig: vango.NewSignal(get(s.GetState()))}
	sel.unsub = s.Subscribe(func(next, _ S) {
		sel.sig.Set(get(next))
	})
	return sel
}

// Get returns the selected value, tracked.
func (sel *Selector[V]) Get() V { return sel.sig.Get() }

// Peek returns the selected value without tracking.
func (sel *Selector[V]) Peek() V { return sel.sig.Peek() }

// Close detaches the selector from its store.
func (sel *Selector[V]) Close() { sel.unsub() }

// Accessor is a zero-argument accessor from the namespace built by
// WithSelectors. Field accessors return the field value (tracked); action
// accessors return the action function.
type Accessor func() any

// Key is one entry of a selector schema.
type Key[S any] interface {
	Name() string
	bind(s *Store[S]) Accessor
}

type fieldKey[S, V any] struct {
	name string
	get  func(S) V
}

func (k fieldKey[S, V]) Name() string { return k.name }

func (k fieldKey[S, V]) bind(s *Store[S]) Accessor {
	sel := Select(s, k.get)
	return func() any { return sel.Get() }
}

// Field declares a state field selected by get.
func Field[S, V any](name string, get func(S) V) Key[S] {
	return fieldKey[S, V]{name: name, get: get}
}

type actionKey[S any] struct {
	name string
	fn   any
}

func (k actionKey[S]) Name() string { return k.name }

func (k actionKey[S]) bind(*Store[S]) Accessor {
	fn := k.fn
	return func() any { return fn }
}

// Action declares a mutator exposed through the namespace. fn is returned
// as-is by the accessor; callers assert it to its concrete function type.
func Action[S any](name string, fn any) Key[S] {
	return actionKey[S]{name: name, fn: fn}
}

// Accessors is the immutable per-key namespace of a Bound store.
type Accessors struct {
	byName map[string]Accessor
	names  []string
}

// Lookup returns the accessor for name.
func (a *Accessors) Lookup(name string) (Accessor, bool) {
	acc, ok := a.byName[name]
	return acc, ok
}

// Get calls the accessor for name and returns its result, or nil when name
// is not part of the schema.
func (a *Accessors) Get(name string) any {
	if acc, ok := a.byName[name]; ok {
		return acc()
	}
	return nil
}

// Names returns the schema keys in sorted order.
func (a *Accessors) Names() []string {
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out
}

// Len returns the number of accessors.
func (a *Accessors) Len() int { return len(a.names) }

// Bound is a store augmented with its accessor namespace.
type Bound[S any] struct {
	*Store[S]
	Use *Accessors
}

// WithSelectors augments s with one accessor per key. It panics if two keys
// share a name, which is a schema definition error.
func WithSelectors[S any](s *Store[S], keys ...Key[S]) *Bound[S] {
	acc := &Accessors{byName: make(map[string]Accessor, len(keys))}
	for _, k := range keys {
		name := k.Name()
		if _, dup := acc.byName[name]; dup {
			panic(fmt.Sprintf("store %s: duplicate selector key %q", s.name, name))
		}
		acc.byName[name] = k.bind(s)
		acc.names = append(acc.names, name)
	}
	sort.Strings(acc.names)
	return &Bound[S]{Store: s, Use: acc}
}
