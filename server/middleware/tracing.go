package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/accounts/logger"
	"github.com/kbukum/accounts/observability"
)

// Tracing opens a server span for every request and records request metrics.
// metrics may be nil.
func Tracing(metrics *observability.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, obs := observability.StartRequest(c.Request.Context(), c.Request.Method, route, metrics)
		obs.SetRequestID(logger.RequestIDFromContext(c.Request.Context()))
		c.Request = c.Request.WithContext(ctx)

		defer func() {
			if r := recover(); r != nil {
				obs.End(ctx, http.StatusInternalServerError)
				panic(r)
			}
		}()
		c.Next()

		obs.End(ctx, c.Writer.Status())
	}
}
