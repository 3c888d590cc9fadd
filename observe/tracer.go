package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Tracer manages spans for group passes.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	StartSpan(ctx context.Context, meta BundleMeta) (context.Context, trace.Span)
	EndSpan(span trace.Span, rec Record)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		t = tracenoop.NewTracerProvider().Tracer("noop")
	}
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta BundleMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("bundle.kind", meta.Kind),
		attribute.Int("bundle.entries", meta.Entries),
	}
	if meta.Position != "" {
		attrs = append(attrs, attribute.String("bundle.position", meta.Position))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan records the outcome and ends the span. A fallback sets an error
// status even though the caller receives a usable result.
func (t *tracerImpl) EndSpan(span trace.Span, rec Record) {
	attrs := []attribute.KeyValue{attribute.String("bundle.outcome", string(rec.Outcome))}
	if rec.Fingerprint != "" {
		attrs = append(attrs, attribute.String("bundle.fingerprint", rec.Fingerprint))
	}
	span.SetAttributes(attrs...)

	if rec.Err != nil {
		span.SetStatus(codes.Error, rec.Err.Error())
		span.RecordError(rec.Err)
		if rec.Component != "" {
			span.SetAttributes(attribute.String("bundle.component", rec.Component))
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
