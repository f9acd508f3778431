package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/accounts/failure"
	"github.com/kbukum/accounts/logger"
)

// Recovery returns a Gin middleware that recovers from panics escaping the
// handler chain and answers them through the failure pipeline. There is no
// transaction at this level; handlers run through the dispatcher recover
// their own panics before this middleware sees them.
func Recovery(p *failure.Pipeline, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			ctx := c.Request.Context()
			resp := p.Handle(ctx, failure.Recovered(r), nil)
			if c.Writer.Written() {
				log.WithContext(ctx).Warn("panic after response was written", logger.Fields(
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				))
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(resp.Status, resp.Body)
		}()
		c.Next()
	}
}
