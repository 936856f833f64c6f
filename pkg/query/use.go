package query

import (
	"context"
	"time"
)

// Fetcher loads the value for one key.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Options describe one query.
type Options[T any] struct {
	Key Key
	Fn  Fetcher[T]

	// StaleTime is how long loaded data stays fresh. Zero means stale at
	// once, so every mount refetches in the background while the loaded
	// data stays visible. NeverStale disables refetch on mount.
	StaleTime time.Duration

	// Retry is the number of extra attempts after a failed fetch.
	Retry      int
	RetryDelay time.Duration

	OnSuccess func(T)
	OnError   func(error)
}

// Use reads the entry for opts.Key, subscribing the current render to it,
// and starts a fetch when the entry has never loaded, was invalidated, or
// is stale and being mounted. The latest Fn registered for a key is the
// one used.
func Use[T any](c *Client, opts Options[T]) Result[T] {
	e := c.lookup(opts.Key)
	register(c, e, opts)
	mounted := c.observe(e)

	if c.needsFetch(e, mounted) {
		c.start(e)
	}

	snap := e.state.Get()
	res := Result[T]{
		Status:     snap.status,
		Err:        snap.err,
		IsLoading:  snap.status == Pending || snap.status == Loading,
		IsFetching: snap.fetching,
	}
	if v, ok := snap.data.(T); ok {
		res.Data = v
	}
	if snap.status == Pending && opts.Fn == nil {
		res.Status = Error
		res.Err = ErrNoFetcher
		res.IsLoading = false
	}
	return res
}

// GetData returns the cached value for key without subscribing.
func GetData[T any](c *Client, key Key) (T, bool) {
	var zero T
	c.mu.Lock()
	e, ok := c.entries[key.Hash()]
	c.mu.Unlock()
	if !ok {
		return zero, false
	}
	snap := e.state.Peek()
	if snap.status != Ready {
		return zero, false
	}
	v, ok := snap.data.(T)
	return v, ok
}

// SetData writes value into the cache as if a fetch had returned it.
func SetData[T any](c *Client, key Key, value T) {
	e := c.lookup(key)
	e.state.Update(func(s snapshot) snapshot {
		s.status = Ready
		s.data = value
		s.err = nil
		s.updatedAt = time.Now()
		return s
	})
}

func register[T any](c *Client, e *entry, opts Options[T]) {
	d := c.defaults

	c.mu.Lock()
	defer c.mu.Unlock()

	if opts.Fn != nil {
		fn := opts.Fn
		e.fetch = func(ctx context.Context) (any, error) { return fn(ctx) }
	}
	e.staleTime = pick(opts.StaleTime, d.StaleTime)
	e.retry = pick(opts.Retry, d.Retry)
	e.retryDelay = pick(opts.RetryDelay, d.RetryDelay)

	e.onSuccess, e.onError = nil, opts.OnError
	if opts.OnSuccess != nil {
		cb := opts.OnSuccess
		e.onSuccess = func(v any) {
			if typed, ok := v.(T); ok {
				cb(typed)
			}
		}
	}
}

func pick[V comparable](v, fallback V) V {
	var zero V
	if v == zero {
		return fallback
	}
	return v
}

// Fetch loads opts.Key and blocks until the value is available. A fetch
// already in flight for the key is joined rather than repeated.
func Fetch[T any](c *Client, opts Options[T]) (T, error) {
	var zero T
	e := c.lookup(opts.Key)
	register(c, e, opts)

	e.state.Update(func(s snapshot) snapshot {
		s.fetching = true
		if s.status == Pending {
			s.status = Loading
		}
		return s
	})

	v, err, _ := c.group.Do(e.hash, func() (any, error) {
		return c.run(e)
	})
	c.settle(e, v, err)
	if err != nil {
		return zero, err
	}
	typed, _ := v.(T)
	return typed, nil
}
