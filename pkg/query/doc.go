// Package query is a keyed cache for asynchronous data.
//
// A Client owns cache entries addressed by a Key (an ordered sequence of
// segments). Use reads an entry inside a tracked render, starting the fetch
// the first time the key is seen:
//
//	res := query.Use(client, query.Options[string]{
//	    Key: query.Key{"greeting"},
//	    Fn: func(ctx context.Context) (string, error) {
//	        return "hello", nil
//	    },
//	})
//	if res.IsLoading {
//	    return vdom.P("Loading...")
//	}
//	return vdom.P(res.Data)
//
// The render that called Use is re-notified when the entry settles.
// Concurrent fetches of one key are coalesced.
//
// A session brackets each render with BeginRender and EndRender. An entry
// the render stops reading is unmounted; reading it again mounts it, and a
// mount refetches data older than StaleTime (zero by default, so every
// mount refetches). Invalidate marks entries stale and refetches those the
// latest render read. Data already loaded stays visible while a refetch
// runs, so IsLoading is only true before the first successful fetch.
package query
