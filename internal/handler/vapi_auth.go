package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mnas4716/Vapi-medical-assistant/internal/config"
)

// VapiAuthMiddleware verifies the x-vapi-secret header on function-call
// endpoints. When no secret is configured the check is skipped.
func VapiAuthMiddleware() gin.HandlerFunc {
	return VapiAuthMiddlewareWith(strings.TrimSpace(config.VapiSecretKey))
}

// VapiAuthMiddlewareWith is a testable variant of VapiAuthMiddleware.
func VapiAuthMiddlewareWith(secret string) gin.HandlerFunc {
	secret = strings.TrimSpace(secret)

	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		provided := strings.TrimSpace(c.GetHeader("x-vapi-secret"))
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Forbidden: invalid secret"})
			return
		}

		c.Next()
	}
}
