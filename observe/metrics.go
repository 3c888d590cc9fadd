package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records optimization metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordOptimization records one group pass.
	RecordOptimization(ctx context.Context, meta BundleMeta, rec Record)
}

type metricsImpl struct {
	total     metric.Int64Counter
	fallbacks metric.Int64Counter
	hits      metric.Int64Counter
	duration  metric.Float64Histogram
	bytes     metric.Int64Histogram
}

// NewMetrics creates Metrics backed by the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	total, err := meter.Int64Counter(
		"asset.optimize.total",
		metric.WithDescription("Total number of group optimization passes"),
		metric.WithUnit("{pass}"),
	)
	if err != nil {
		return nil, err
	}

	fallbacks, err := meter.Int64Counter(
		"asset.optimize.fallbacks",
		metric.WithDescription("Passes that returned the original references after a failure"),
		metric.WithUnit("{pass}"),
	)
	if err != nil {
		return nil, err
	}

	hits, err := meter.Int64Counter(
		"asset.optimize.cache_hits",
		metric.WithDescription("Passes served by an existing bundle"),
		metric.WithUnit("{pass}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"asset.optimize.duration_ms",
		metric.WithDescription("Group optimization duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	bytes, err := meter.Int64Histogram(
		"asset.bundle.bytes",
		metric.WithDescription("Size of written bundles"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		total:     total,
		fallbacks: fallbacks,
		hits:      hits,
		duration:  duration,
		bytes:     bytes,
	}, nil
}

func (m *metricsImpl) RecordOptimization(ctx context.Context, meta BundleMeta, rec Record) {
	attrs := []attribute.KeyValue{
		attribute.String("bundle.kind", meta.Kind),
		attribute.String("outcome", string(rec.Outcome)),
	}
	if rec.Component != "" {
		attrs = append(attrs, attribute.String("component", rec.Component))
	}
	opt := metric.WithAttributes(attrs...)

	m.total.Add(ctx, 1, opt)
	switch rec.Outcome {
	case OutcomeFallback:
		m.fallbacks.Add(ctx, 1, opt)
	case OutcomeHit:
		m.hits.Add(ctx, 1, opt)
	case OutcomeBuilt:
		m.bytes.Record(ctx, int64(rec.Bytes), opt)
	}
	m.duration.Record(ctx, float64(rec.Duration.Microseconds())/1000, opt)
}

type noopMetrics struct{}

func (noopMetrics) RecordOptimization(context.Context, BundleMeta, Record) {}
