package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"staybook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// WebhookTokenAuth protects the payment provider callback with a
// static bearer token shared with the provider's webhook config.
func WebhookTokenAuth(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" {
			logWebhookFailure(c, http.StatusInternalServerError, "token_not_configured")
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Webhook token is not configured")
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logWebhookFailure(c, http.StatusUnauthorized, "missing_auth")
			response.Error(c, http.StatusUnauthorized, "AUTH_MISSING", "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logWebhookFailure(c, http.StatusUnauthorized, "invalid_auth_format")
			response.Error(c, http.StatusUnauthorized, "AUTH_INVALID", "Authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(expected)) != 1 {
			logWebhookFailure(c, http.StatusForbidden, "invalid_token")
			response.Error(c, http.StatusForbidden, "AUTH_INVALID", "Invalid webhook token")
			c.Abort()
			return
		}

		c.Next()
	}
}

func logWebhookFailure(c *gin.Context, status int, reason string) {
	log.Printf("webhook_auth status=%d client_ip=%s reason=%s", status, c.ClientIP(), reason)
}
