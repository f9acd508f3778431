// Package endpoint provides the health, liveness and readiness probes.
package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/accounts/component"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

var startTime = time.Now()

func check(c *gin.Context, checker HealthChecker) ([]component.Health, component.HealthStatus) {
	if checker == nil {
		return nil, component.StatusHealthy
	}
	reports := checker(c.Request.Context())
	return reports, component.Aggregate(reports)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Health reports every component. An unhealthy component turns the
// response into a 503; degraded components still answer 200.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		components, status := check(c, checker)
		code := http.StatusOK
		if status == component.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":     status,
			"service":    serviceName,
			"timestamp":  timestamp(),
			"components": components,
		})
	}
}

// Readiness answers 503 with the failing component names while any
// component is unhealthy.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		components, status := check(c, checker)
		if status != component.StatusUnhealthy {
			c.JSON(http.StatusOK, gin.H{"status": "ready", "service": serviceName, "timestamp": timestamp()})
			return
		}

		failing := make([]string, 0, len(components))
		for _, h := range components {
			if h.Status == component.StatusUnhealthy {
				failing = append(failing, h.Name)
			}
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not_ready",
			"service":   serviceName,
			"timestamp": timestamp(),
			"failing":   failing,
		})
	}
}

// Liveness only confirms the process serves HTTP. It never consults
// dependencies.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "alive",
			"service":   serviceName,
			"uptime":    time.Since(startTime).Round(time.Second).String(),
			"timestamp": timestamp(),
		})
	}
}
