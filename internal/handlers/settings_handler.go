package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/rifas/internal/helpers"
)

type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}

func GetSettings(c *gin.Context) {
	svc := mustServices(c)
	if svc == nil {
		return
	}

	settings, err := svc.Settings.All(c.Request.Context())
	if err != nil {
		helpers.RespondInternalError(c, "Failed to load settings.", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"settings": settings,
	})
}

func UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Settings are required.")
		return
	}

	svc := mustServices(c)
	if svc == nil {
		return
	}

	if err := svc.Settings.Upsert(c.Request.Context(), req.Settings); err != nil {
		respondServiceError(c, err, "Failed to save settings.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Settings updated successfully.",
	})
}
