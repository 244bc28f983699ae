package middleware

import (
	"context"
	"strings"

	"github.com/estudio-contable/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling attaches controller, route and method pprof labels to the
// request so Pyroscope can slice CPU and allocation profiles by endpoint.
func Profiling() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || isProbe(route) || strings.HasPrefix(route, "/swagger") {
			c.Next()
			return
		}
		labels := telemetry.HTTPRequestLabels(controllerFromRoute(route), route, c.Request.Method)
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// controllerFromRoute returns the first static segment after /api/v1,
// e.g. "/api/v1/operaciones/:id/pago" -> "operaciones".
func controllerFromRoute(route string) string {
	rest := strings.TrimPrefix(route, "/api/v1")
	for _, part := range strings.Split(rest, "/") {
		if part != "" && !strings.HasPrefix(part, ":") && !strings.HasPrefix(part, "*") {
			return part
		}
	}
	return ""
}
