package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// PrivateUntil lets the client cache the response until expiresAt. An
// expiry in the past yields max-age=0.
func PrivateUntil(c *gin.Context, expiresAt time.Time) {
	maxAge := max(time.Until(expiresAt).Round(time.Second), 0)
	c.Header("Cache-Control", fmt.Sprintf("private, max-age=%d", int(maxAge/time.Second)))
}

// NoStore marks responses as uncacheable.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
