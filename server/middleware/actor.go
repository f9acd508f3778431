package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/accounts/logger"
)

// HeaderUserID carries the id of the acting user, asserted by the gateway in
// front of the service.
const HeaderUserID = "X-User-Id"

const actorKey = "actor_id"

// Actor copies the X-User-Id header into the Gin and request contexts.
// It never rejects a request; handlers decide whether an actor is required.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.GetHeader(HeaderUserID)); id != "" {
			c.Set(actorKey, id)
			c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), id))
		}
		c.Next()
	}
}

// ActorID returns the acting user id set by Actor, or "".
func ActorID(c *gin.Context) string {
	return c.GetString(actorKey)
}
