package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/rifas/internal/gateway"
	"github.com/farellandr/rifas/internal/helpers"
)

const callbackTokenHeader = "X-CALLBACK-TOKEN"

func GatewayMiddleware(gw gateway.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		if gw != nil {
			c.Set(GatewayKey, gw)
		}
		c.Next()
	}
}

// GetGateway returns nil when card checkout is not configured.
func GetGateway(c *gin.Context) gateway.Gateway {
	gw, exists := c.Get(GatewayKey)
	if !exists {
		return nil
	}
	return gw.(gateway.Gateway)
}

// XenditCallbackMiddleware rejects webhook calls whose callback token does not
// match the one configured in the Xendit dashboard.
func XenditCallbackMiddleware(callbackToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if callbackToken == "" {
			helpers.RespondWithError(c, http.StatusServiceUnavailable, "Payment gateway callbacks are not configured.")
			c.Abort()
			return
		}
		got := c.GetHeader(callbackTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(callbackToken)) != 1 {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid callback token.")
			c.Abort()
			return
		}
		c.Next()
	}
}
