// Package observability wires OpenTelemetry tracing and metrics.
//
// The Component installs OTLP HTTP tracer and meter providers when enabled
// and leaves the global no-op providers in place otherwise. StartRequest
// opens a server span per inbound request, and FailureMetrics feeds the
// failure pipeline's counters:
//
//	m, err := observability.NewFailureMetrics(observability.Meter())
//	p := failure.New(auditLog, failure.WithMetrics(m))
package observability
