package vango

import (
	"sync"
	"sync/atomic"
)

// Owner is a scope in the component hierarchy. It carries context values
// and cleanup functions; disposing an owner disposes its children first.
//
// A live session holds the root owner; every Provider rendered below it
// opens a child owner for the duration of that render.
type Owner struct {
	id     uint64
	parent *Owner

	childrenMu sync.Mutex
	children   []*Owner

	cleanupsMu sync.Mutex
	cleanups   []func()

	valuesMu sync.RWMutex
	values   map[any]any

	disposed atomic.Bool
}

// NewOwner creates an owner registered as a child of parent.
// A nil parent creates a root owner.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{id: NextID(), parent: parent}
	if parent != nil {
		parent.childrenMu.Lock()
		parent.children = append(parent.children, o)
		parent.childrenMu.Unlock()
	}
	return o
}

// ID returns the owner's unique id.
func (o *Owner) ID() uint64 { return o.id }

// Parent returns the parent owner, or nil for a root.
func (o *Owner) Parent() *Owner { return o.parent }

// IsDisposed reports whether Dispose has run.
func (o *Owner) IsDisposed() bool { return o.disposed.Load() }

// SetValue stores a context value on this owner.
func (o *Owner) SetValue(key, value any) {
	o.valuesMu.Lock()
	defer o.valuesMu.Unlock()
	if o.values == nil {
		o.values = make(map[any]any)
	}
	o.values[key] = value
}

// GetValue looks key up on this owner, then on its ancestors.
func (o *Owner) GetValue(key any) any {
	for cur := o; cur != nil; cur = cur.parent {
		cur.valuesMu.RLock()
		val, ok := cur.values[key]
		cur.valuesMu.RUnlock()
		if ok {
			return val
		}
	}
	return nil
}

// OnCleanup registers fn to run when the owner is disposed. If the owner is
// already disposed fn runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed.Load() {
		fn()
		return
	}
	o.cleanupsMu.Lock()
	o.cleanups = append(o.cleanups, fn)
	o.cleanupsMu.Unlock()
}

// Dispose disposes children in reverse creation order, then runs cleanups in
// reverse registration order. Calling it twice is a no-op.
func (o *Owner) Dispose() {
	if o.disposed.Swap(true) {
		return
	}

	if o.parent != nil {
		o.parent.removeChild(o)
	}

	o.childrenMu.Lock()
	children := o.children
	o.children = nil
	o.childrenMu.Unlock()
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	o.cleanupsMu.Lock()
	cleanups := o.cleanups
	o.cleanups = nil
	o.cleanupsMu.Unlock()
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

func (o *Owner) removeChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// SetContext sets a value on the current owner.
func SetContext(key, value any) {
	if owner := CurrentOwner(); owner != nil {
		owner.SetValue(key, value)
	}
}

// GetContext looks key up from the current owner. Returns nil outside of an owner.
func GetContext(key any) any {
	if owner := CurrentOwner(); owner != nil {
		return owner.GetValue(key)
	}
	return nil
}
