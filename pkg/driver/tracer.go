package driver

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// Tracer is the tracing surface the driver needs. It is satisfied by
// *tracer.Tracer from pkg/tracer; a nil Tracer disables tracing.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, trace.Span)
	RecordErrorOnSpan(span trace.Span, err error)
	SetAttributes(span trace.Span, attrs map[string]interface{})
}

// span opens a driver span, or a no-op span when tracing is disabled.
func (c *Client) span(ctx context.Context, name string) (context.Context, trace.Span) {
	if c.tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return c.tracer.StartSpan(ctx, name)
}

// endSpan records err on the span when set and ends it.
func (c *Client) endSpan(span trace.Span, err error) {
	if err != nil && c.tracer != nil {
		c.tracer.RecordErrorOnSpan(span, err)
	}
	span.End()
}
