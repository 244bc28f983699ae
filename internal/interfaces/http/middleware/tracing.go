package middleware

import (
	"github.com/estudio-contable/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing opens a server span per request named after the route pattern.
// Health probes are not traced.
func Tracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName,
		otelgin.WithGinFilter(func(c *gin.Context) bool {
			return !isProbe(c.Request.URL.Path)
		}),
	)
}

// SpanAttributes tags the active span with the request and owner IDs. It runs
// after JWTAuthMiddleware so the owner is known.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := GetRequestID(c); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
			if owner := GetOwnerID(c); owner != "" {
				span.SetAttributes(attribute.String(telemetry.SpanAttrOwnerID, owner))
			}
		}
		c.Next()
	}
}

func isProbe(path string) bool {
	return path == "/health" || path == "/health/ready"
}
