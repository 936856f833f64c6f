// Package vango is the reactive core of the starter application.
//
// Reading a Signal during a tracked render subscribes the current Listener to
// that signal; writing it marks every subscriber dirty. Live sessions are
// listeners: a dirty session re-renders its mount point on its event loop.
//
//	count := vango.NewSignal(0)
//	vango.WithListener(session, func() {
//	    _ = count.Get() // session now depends on count
//	})
//	count.Set(1) // session.MarkDirty()
//
// Owners form a scope hierarchy carrying context values. Context[T] gives
// typed access to those values and a Provider component that scopes a value
// to the subtree it renders:
//
//	var Theme = vango.CreateContext("light")
//
//	Theme.Provider("dark", Page())
//
// # Batching
//
// Batch defers notifications until the outermost batch returns, so a
// listener depending on several signals written together is marked dirty once.
//
// # Thread Safety
//
// Signals may be read and written from any goroutine. The tracking context
// (current owner, current listener, batch depth) is per goroutine, so work
// spawned on another goroutine must re-establish it with WithOwner.
package vango
