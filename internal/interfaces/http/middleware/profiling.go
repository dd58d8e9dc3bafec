package middleware

import (
	"context"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling labels CPU samples taken while serving a request with its route.
// Requests that match no route are not labelled.
func Profiling() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || route == "/health" {
			c.Next()
			return
		}

		labels := map[string]string{telemetry.ProfilingLabelRoute: route}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
