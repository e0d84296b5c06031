package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"hirevision-backend/internal/shared/server/respond"
	"hirevision-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 envelope. The stack is logged,
// never returned to the client. Headers already flushed are left alone.
func Recovery(log telemetry.Logger) gin.HandlerFunc {
	log = telemetry.OrDefault(log)
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Error("http.panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"user_id":    c.GetString(userIDKey),
				"panic":      fmt.Sprint(rec),
				"stack":      string(debug.Stack()),
				"route":      c.FullPath(),
				"method":     c.Request.Method,
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "Unexpected server error", nil)
		}()
		c.Next()
	}
}
