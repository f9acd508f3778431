// Package server provides the HTTP server: a Gin engine served over HTTP/1.1
// and h2c, the standard middleware stack, and the Dispatcher that runs
// handlers inside a transactional scope.
//
// Handlers never write error responses. They return a failure, and the
// Dispatcher hands it with the request's scope to the failure pipeline and
// writes the pipeline's response as is:
//
//	d := server.NewDispatcher(pipeline, scopeFn, log)
//	srv.GinEngine().GET("/api/users", d.Handle(h.ListUsers))
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: panics outside the dispatcher go through the failure pipeline
//   - RequestID: request id generation and propagation into the log context
//   - Actor: copies X-User-Id into the request context
//   - Tracing: OpenTelemetry server span and request metrics
//   - GinRequestLogger: request logging with latency
//   - CORS and BodySizeLimit: wrap the whole server handler
//
// # Endpoints
//
// Built-in endpoints (server/endpoint): /health, /alive, /ready.
package server
