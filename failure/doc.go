// Package failure runs the request failure pipeline: a failure raised by a
// handler is classified, the request's transaction is rolled back when the
// kind requires it, the outcome is recorded to the audit sink and the fixed
// client response for the kind is returned.
//
//	p := failure.New(auditLogger, failure.WithLogger(log), failure.WithMetrics(m))
//	resp := p.Handle(ctx, err, scope)
//	c.JSON(resp.Status, resp.Body)
package failure
