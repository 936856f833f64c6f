// Package store provides observable state containers with per-field
// selectors.
//
// A Store[S] holds one state value of type S. SetState and Update replace
// the whole value, notify subscribers with (next, prev) and report a labeled
// Event to every Observer, which is how devtools and metrics see actions.
//
//	counter := store.New("counter", Counter{})
//	counter.Update("counter/increment", func(c Counter) Counter {
//	    c.N++
//	    return c
//	})
//
// WithSelectors builds the accessor namespace from an explicit schema. A
// field accessor read during a tracked render subscribes that render only to
// its field, so unrelated writes do not re-render it:
//
//	bound := store.WithSelectors(counter,
//	    store.Field("n", func(c Counter) int { return c.N }),
//	    store.Action[Counter]("reset", reset),
//	)
//	n := bound.Use.Get("n") // 0, tracked
//
// The schema is fixed when WithSelectors runs; accessors are never added later.
package store
