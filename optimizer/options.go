package optimizer

import (
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/assetops/cache"
	"github.com/jonwraymond/assetops/minifier"
	"github.com/jonwraymond/assetops/observe"
	"github.com/jonwraymond/assetops/source"
)

// Option configures an Engine.
type Option func(*Engine)

// WithReader sets the source reader.
// Default: local reads under Config.Webroot, remote reads bounded by Config.ReadTimeout.
func WithReader(r source.Reader) Option {
	return func(e *Engine) {
		if r != nil {
			e.reader = r
		}
	}
}

// WithMinifier sets the minifier.
// Default: minifier.New()
func WithMinifier(m minifier.Minifier) Option {
	return func(e *Engine) {
		if m != nil {
			e.minifier = m
		}
	}
}

// WithFingerprinter sets the fingerprinter.
// Default: cache.NewDefaultFingerprinter(nil)
func WithFingerprinter(f cache.Fingerprinter) Option {
	return func(e *Engine) {
		if f != nil {
			e.fingerprinter = f
		}
	}
}

// WithMiddleware sets the instrumentation wrapped around every group pass.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(e *Engine) {
		if mw != nil {
			e.mw = mw
		}
	}
}

// WithLogger instruments the engine with logging only.
func WithLogger(l observe.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.mw = observe.NewMiddleware(nil, nil, l)
		}
	}
}

// WithSingleFlight collapses concurrent rebuilds of the same bundle within
// this engine into one.
func WithSingleFlight() Option {
	return func(e *Engine) {
		e.flight = &singleflight.Group{}
	}
}

// WithFetchConcurrency reads up to n mergeable assets of a group in
// parallel. Output order is unaffected. n <= 1 reads sequentially.
func WithFetchConcurrency(n int) Option {
	return func(e *Engine) {
		e.fetchConcurrency = n
	}
}
