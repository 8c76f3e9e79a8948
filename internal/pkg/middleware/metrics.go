package middleware

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/queska/queska-go/internal/app/observability/metrics"
)

// RequestMetricsMiddleware records per-request metrics. Tracing is handled
// separately by OTELGinMiddleware.
func RequestMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		m := metrics.Get()
		m.HTTPRequestsTotal.Add(context.Background(), 1,
			metric.WithAttributes(
				attribute.String("method", c.Request.Method),
				attribute.String("path", path),
				attribute.String("status", strconv.Itoa(statusCode)),
			))

		m.HTTPRequestDuration.Record(context.Background(), duration,
			metric.WithAttributes(
				attribute.String("method", c.Request.Method),
				attribute.String("path", path),
			))

		if strings.HasSuffix(path, "/checkout") {
			m.CheckoutAttemptsTotal.Add(context.Background(), 1,
				metric.WithAttributes(
					attribute.String("status", strconv.Itoa(statusCode)),
				))
		}

		if c.Request.Method == "GET" && path == "/api/v1/cards/:code" {
			m.CardViewsTotal.Add(context.Background(), 1,
				metric.WithAttributes(
					attribute.String("status", strconv.Itoa(statusCode)),
				))
		}

		if strings.HasSuffix(path, "/clone") {
			m.CardClonesTotal.Add(context.Background(), 1,
				metric.WithAttributes(
					attribute.String("status", strconv.Itoa(statusCode)),
				))
		}
	}
}
