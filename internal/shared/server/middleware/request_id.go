package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hirevision-backend/internal/shared/requestid"
)

const (
	requestIDKey = "requestId"

	maxRequestIDLen = 128
)

// RequestID attaches a request ID to the gin context, the request context and
// the response header. A well-formed inbound X-Request-Id is reused.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestid.Header))
		if id == "" || len(id) > maxRequestIDLen || !validIdentity(id) {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Request = c.Request.WithContext(requestid.With(c.Request.Context(), id))
		c.Writer.Header().Set(requestid.Header, id)
		c.Next()
	}
}

// RequestIDFromContext fetches the request ID stored by RequestID middleware.
func RequestIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(requestIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
