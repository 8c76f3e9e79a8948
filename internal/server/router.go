package server

import (
	"bytes"
	"io"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/queska/queska-go/internal/pkg/config"
	"github.com/queska/queska-go/internal/pkg/middleware"
	"github.com/queska/queska-go/internal/routes"
)

// SetupRouter configures and returns the Gin router with all middleware and routes
func SetupRouter(dbPool *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(ginzap.GinzapWithConfig(logger, &ginzap.Config{
		UTC:        true,
		TimeFormat: time.RFC3339,
		Context:    zapContextFunc(),
	}))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(middleware.OTELGinMiddleware("queska"))
	r.Use(middleware.RequestMetricsMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.SecurityMiddleware())

	routes.Setup(r, dbPool, cfg, logger)

	return r
}

// zapContextFunc returns the Zap context function for logging
func zapContextFunc() ginzap.Fn {
	return func(c *gin.Context) []zapcore.Field {
		fields := []zapcore.Field{}

		if requestID := c.Writer.Header().Get("X-Request-Id"); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}

		// OTEL trace/span IDs (from context)
		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().IsValid() {
			fields = append(fields,
				zap.String("trace_id", span.SpanContext().TraceID().String()),
				zap.String("span_id", span.SpanContext().SpanID().String()),
			)
		}

		// Request body (reads and restores; skip for large/streaming bodies to avoid perf hit)
		if c.Request.Body != nil {
			var buf bytes.Buffer
			tee := io.TeeReader(c.Request.Body, &buf)
			body, _ := io.ReadAll(tee)
			c.Request.Body = io.NopCloser(&buf)
			if len(body) > 0 {
				fields = append(fields, zap.String("body", string(body)))
			}
		}

		return fields
	}
}
