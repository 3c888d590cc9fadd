package observe

import (
	"context"
	"time"
)

// PassFunc runs one group pass and reports how it ended.
type PassFunc func(ctx context.Context) Record

// Middleware wraps group passes with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Run is safe for concurrent use.
//   - Context: the span context is passed to fn.
//   - Ownership: the Record from fn is returned unchanged apart from Duration.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware. Nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NewTracer(nil)
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{tracer: tracer, metrics: metrics, logger: logger}
}

// NopMiddleware returns a Middleware that records nothing.
func NopMiddleware() *Middleware {
	return NewMiddleware(nil, nil, nil)
}

// Logger returns the middleware's logger.
func (m *Middleware) Logger() Logger { return m.logger }

// Run executes fn inside a span and records its outcome.
func (m *Middleware) Run(ctx context.Context, meta BundleMeta, fn PassFunc) Record {
	ctx, span := m.tracer.StartSpan(ctx, meta)
	start := time.Now()

	rec := fn(ctx)
	if rec.Duration == 0 {
		rec.Duration = time.Since(start)
	}

	m.tracer.EndSpan(span, rec)
	m.metrics.RecordOptimization(ctx, meta, rec)

	meta.Fingerprint = rec.Fingerprint
	log := m.logger.WithBundle(meta)
	fields := []Field{
		{Key: "outcome", Value: string(rec.Outcome)},
		{Key: "duration_ms", Value: float64(rec.Duration.Microseconds()) / 1000},
	}

	switch rec.Outcome {
	case OutcomeFallback:
		if rec.Component != "" {
			fields = append(fields, Field{Key: "component", Value: rec.Component})
		}
		if rec.Err != nil {
			fields = append(fields, Field{Key: "error", Value: rec.Err.Error()})
		}
		log.Error(ctx, "asset optimization failed, using original references", fields...)
	case OutcomeBuilt:
		fields = append(fields, Field{Key: "bytes", Value: rec.Bytes})
		log.Info(ctx, "bundle written", fields...)
	default:
		log.Debug(ctx, "asset optimization completed", fields...)
	}

	return rec
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
