package i18n

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/starter/internal/errors"
)

// Resources is the process-wide, asynchronous catalog load. It becomes
// ready exactly once, with either a bundle or an error.
type Resources struct {
	ready  chan struct{}
	once   sync.Once
	bundle *Bundle
	err    error
}

// LoadOptions configure Load.
type LoadOptions struct {
	BaseLocale string
	Logger     *slog.Logger

	// Delay postpones the load; tests and demos use it to exercise the
	// loading state.
	Delay time.Duration
}

// Load starts reading src in the background and returns immediately.
func Load(ctx context.Context, src Source, opts LoadOptions) *Resources {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "i18n", "source", src.Name())

	r := &Resources{ready: make(chan struct{})}
	go func() {
		if opts.Delay > 0 {
			select {
			case <-ctx.Done():
				r.resolve(nil, errors.New(errors.CodeCatalogLoad).Wrap(ctx.Err()))
				return
			case <-time.After(opts.Delay):
			}
		}

		start := time.Now()
		bundle, err := load(ctx, src, opts.BaseLocale)
		if err != nil {
			logger.Error("catalog load failed, keys will render literally", "error", err)
		} else {
			logger.Info("catalogs loaded",
				"locales", bundle.Locales(),
				"duration", time.Since(start))
		}
		r.resolve(bundle, err)
	}()
	return r
}

func load(ctx context.Context, src Source, base string) (*Bundle, error) {
	files, err := src.Files(ctx)
	if err != nil {
		return nil, errors.FromError(err, errors.CodeCatalogLoad)
	}
	return Parse(files, base)
}

// Loaded returns Resources that are already ready with b.
func Loaded(b *Bundle) *Resources {
	r := &Resources{ready: make(chan struct{})}
	r.resolve(b, nil)
	return r
}

// Pending returns Resources that become ready when resolve is called.
// Tests use it to hold the loading state open.
func Pending() (r *Resources, resolve func(*Bundle, error)) {
	r = &Resources{ready: make(chan struct{})}
	return r, r.resolve
}

func (r *Resources) resolve(b *Bundle, err error) {
	r.once.Do(func() {
		r.bundle = b
		r.err = err
		close(r.ready)
	})
}

// Ready is closed once the load has finished, successfully or not.
func (r *Resources) Ready() <-chan struct{} {
	return r.ready
}

// IsLoaded reports whether the load has finished.
func (r *Resources) IsLoaded() bool {
	select {
	case <-r.ready:
		return true
	default:
		return false
	}
}

// Wait blocks until the load finishes or ctx is done.
func (r *Resources) Wait(ctx context.Context) error {
	select {
	case <-r.ready:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Bundle returns the loaded bundle, or nil before the load finishes or
// when it failed.
func (r *Resources) Bundle() *Bundle {
	if !r.IsLoaded() {
		return nil
	}
	return r.bundle
}

// Err returns the load error, if any.
func (r *Resources) Err() error {
	if !r.IsLoaded() {
		return nil
	}
	return r.err
}
