package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/farellandr/rifas/internal/auth"
	"github.com/farellandr/rifas/internal/helpers"
	"github.com/farellandr/rifas/internal/logger"
)

// JWTAuthMiddleware admits requests carrying a valid admin token, either as a
// Bearer header or in the admin_token cookie.
func JWTAuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err == auth.ErrMissingToken {
			if cookie, cerr := c.Cookie(auth.CookieName); cerr == nil {
				tokenString, err = cookie, nil
			}
		}
		if err != nil {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Authentication required.")
			c.Abort()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			logger.Debug("admin token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid or expired token.")
			c.Abort()
			return
		}

		c.Set(AdminIDKey, claims.AdminID)
		c.Set(AdminUsernameKey, claims.Username)
		c.Next()
	}
}
