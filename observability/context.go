package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RequestObservation tracks the span and timing of one inbound request.
type RequestObservation struct {
	Method    string
	Route     string
	StartTime time.Time

	span    trace.Span
	metrics *HTTPMetrics
}

// StartRequest starts a server span for an inbound request and records the
// request start metric. If metrics is nil, metric recording is skipped.
func StartRequest(ctx context.Context, method, route string, metrics *HTTPMetrics) (context.Context, *RequestObservation) {
	name := method + " " + route
	ctx, span := StartSpan(ctx, name, trace.WithSpanKind(trace.SpanKindServer))
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("http.route", route),
	)
	if metrics != nil {
		metrics.RecordRequestStart(ctx)
	}
	return ctx, &RequestObservation{
		Method:    method,
		Route:     route,
		StartTime: time.Now(),
		span:      span,
		metrics:   metrics,
	}
}

// SetRequestID tags the span with the request id.
func (o *RequestObservation) SetRequestID(id string) {
	if id != "" {
		o.span.SetAttributes(attribute.String(AttrRequestID, id))
	}
}

// End finishes the span and records request-end metrics.
func (o *RequestObservation) End(ctx context.Context, status int) {
	duration := time.Since(o.StartTime)

	o.span.SetAttributes(
		attribute.Int("http.response.status_code", status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	if status >= 500 {
		o.span.SetStatus(codes.Error, "server error")
	}
	o.span.End()

	if o.metrics != nil {
		o.metrics.RecordRequestEnd(ctx, o.Method, o.Route, status, duration)
	}
}

// Duration returns the elapsed time since request start.
func (o *RequestObservation) Duration() time.Duration {
	return time.Since(o.StartTime)
}
