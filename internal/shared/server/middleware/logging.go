package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hirevision-backend/internal/shared/telemetry"
)

const (
	// RecordIDKey is set by handlers that create or read a task record.
	RecordIDKey = "recordId"
	// StatusTransitionKey is set by handlers that move a record between states.
	StatusTransitionKey = "statusTransition"
)

// Logging emits a structured log per request.
func Logging(log telemetry.Logger) gin.HandlerFunc {
	log = telemetry.OrDefault(log)
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":        RequestIDFromContext(c),
			"method":            c.Request.Method,
			"path":              c.Request.URL.Path,
			"route":             c.FullPath(),
			"status":            c.Writer.Status(),
			"status_transition": c.GetString(StatusTransitionKey),
			"duration_ms":       float64(latency.Microseconds()) / 1000.0,
			"user_id":           UserIDFromContext(c),
			"record_id":         c.GetString(RecordIDKey),
			"is_guest":          IsGuest(c),
			"client_ip":         c.ClientIP(),
			"user_agent":        c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		log.Info("request.complete", fields)
	}
}
