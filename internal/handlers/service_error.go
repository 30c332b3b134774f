package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/rifas/internal/helpers"
	"github.com/farellandr/rifas/internal/middleware"
	"github.com/farellandr/rifas/internal/services"
)

// respondServiceError maps a service error to its HTTP reply. Unknown errors
// are logged and answered with fallback.
func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrNumbersUnavailable),
		errors.Is(err, services.ErrInvalidStatus):
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrRaffleNotFound):
		helpers.RespondWithError(c, http.StatusNotFound, "Raffle not found or not active.")
	case errors.Is(err, services.ErrPaymentNotFound):
		helpers.RespondWithError(c, http.StatusNotFound, "Payment not found.")
	case errors.Is(err, services.ErrUserNotFound):
		helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
	case errors.Is(err, services.ErrEmailTaken):
		helpers.RespondWithError(c, http.StatusConflict, "User already exists.")
	case errors.Is(err, services.ErrStatusConflict):
		helpers.RespondWithError(c, http.StatusConflict, "Payment status changed, reload and try again.")
	case errors.Is(err, services.ErrInvalidCredentials):
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials.")
	default:
		helpers.RespondInternalError(c, fallback, err)
	}
}

func mustServices(c *gin.Context) *services.Services {
	svc := middleware.GetServices(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
	}
	return svc
}
