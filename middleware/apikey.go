package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/apperror"
)

// ValidateAPIKey guards machine endpoints such as /metrics with X-API-KEY.
// An empty key leaves the endpoint open.
func ValidateAPIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) != 1 {
			c.Error(apperror.Unauthorized("Invalid or missing API key"))
			c.Abort()
			return
		}
		c.Next()
	}
}
