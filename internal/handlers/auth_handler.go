package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/rifas/internal/auth"
	"github.com/farellandr/rifas/internal/helpers"
	"github.com/farellandr/rifas/internal/middleware"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login returns a session token and also sets it as an HttpOnly cookie.
func Login(tokens *auth.TokenManager, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Username and password are required.")
			return
		}

		svc := mustServices(c)
		if svc == nil {
			return
		}

		admin, err := svc.Admins.Authenticate(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			respondServiceError(c, err, "Failed to authenticate.")
			return
		}

		token, _, err := tokens.Generate(admin.ID, admin.Username)
		if err != nil {
			helpers.RespondInternalError(c, "Failed to generate token.", err)
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(auth.CookieName, token, int(tokens.TTL().Seconds()), "/", "", secureCookie, true)

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"token":   token,
			"admin": gin.H{
				"id":       admin.ID,
				"username": admin.Username,
				"email":    admin.Email,
			},
		})
	}
}

func Logout(c *gin.Context) {
	c.SetCookie(auth.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// VerifySession reports the admin behind the current token.
func VerifySession(c *gin.Context) {
	svc := mustServices(c)
	if svc == nil {
		return
	}

	admin, err := svc.Admins.Get(c.Request.Context(), c.GetString(middleware.AdminUsernameKey))
	if err != nil {
		respondServiceError(c, err, "Failed to load admin.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"admin": gin.H{
			"id":       admin.ID,
			"username": admin.Username,
			"email":    admin.Email,
		},
	})
}
