package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hirevision-backend/internal/shared/server/respond"
)

const (
	// UserHeader carries the caller's account ID from the fronting proxy.
	UserHeader = "X-User-Id"
	// GuestHeader carries a browser-generated ID for anonymous callers.
	GuestHeader = "X-Guest-Id"

	userIDKey  = "userId"
	isGuestKey = "isGuest"

	maxIdentityLen = 128
)

// Identity reads the caller identity headers and stores it in the context.
// Identities are not verified here; authentication happens upstream.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		if userID := strings.TrimSpace(c.GetHeader(UserHeader)); userID != "" {
			if !validIdentity(userID) {
				respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "invalid identity", nil)
				return
			}
			c.Set(userIDKey, userID)
			c.Set(isGuestKey, false)
			c.Next()
			return
		}

		guestID := strings.TrimSpace(c.GetHeader(GuestHeader))
		if guestID == "" {
			respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "Missing identity", nil)
			return
		}
		if !validIdentity(guestID) {
			respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "invalid identity", nil)
			return
		}

		c.Set(userIDKey, "guest:"+guestID)
		c.Set(isGuestKey, true)
		c.Next()
	}
}

func validIdentity(id string) bool {
	if len(id) > maxIdentityLen {
		return false
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}

// UserIDFromContext fetches the user ID set by the identity middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// IsGuest reports whether the caller identified with a guest ID.
func IsGuest(c *gin.Context) bool {
	if c == nil {
		return false
	}
	guest, _ := c.Get(isGuestKey)
	b, _ := guest.(bool)
	return b
}
