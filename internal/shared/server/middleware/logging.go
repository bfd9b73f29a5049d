package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"reclamala-backend/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		stage := ""
		if raw, ok := c.Get("pipelineStage"); ok {
			if s, ok := raw.(string); ok {
				stage = s
			}
		}

		fields := map[string]any{
			"request_id":     RequestIDFromContext(c),
			"method":         c.Request.Method,
			"path":           c.Request.URL.Path,
			"status":         status,
			"pipeline_stage": stage,
			"duration_ms":    float64(latency.Microseconds()) / 1000.0,
			"bytes_out":      c.Writer.Size(),
			"client_ip":      c.ClientIP(),
			"user_agent":     c.Request.UserAgent(),
		}
		if status >= 500 {
			telemetry.Error("request.complete", fields)
			return
		}
		telemetry.Info("request.complete", fields)
	}
}
