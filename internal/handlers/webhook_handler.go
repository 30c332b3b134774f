package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farellandr/rifas/internal/gateway"
	"github.com/farellandr/rifas/internal/helpers"
	"github.com/farellandr/rifas/internal/logger"
	"github.com/farellandr/rifas/internal/middleware"
	"github.com/farellandr/rifas/internal/models"
	"github.com/farellandr/rifas/internal/notify"
	"github.com/farellandr/rifas/internal/services"
)

// XenditInvoiceWebhook settles card payments from Xendit invoice callbacks.
// The invoice external id is the payment id.
func XenditInvoiceWebhook(c *gin.Context) {
	var cb gateway.InvoiceCallback
	if err := c.ShouldBindJSON(&cb); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid callback payload.")
		return
	}

	paymentID, err := uuid.Parse(cb.ExternalID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Unknown external ID.")
		return
	}

	status, ok := cb.PaymentStatus()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Ignored."})
		return
	}

	svc := mustServices(c)
	if svc == nil {
		return
	}

	result, err := svc.Verification.Verify(c.Request.Context(), paymentID, status)
	if err != nil {
		if errors.Is(err, services.ErrNumbersUnavailable) {
			logger.Error("paid invoice for numbers held by another payment",
				zap.String("payment_id", paymentID.String()),
				zap.String("invoice_id", cb.ID))
		}
		respondServiceError(c, err, "Failed to apply payment callback.")
		return
	}

	if result.Changed && status == models.PaymentCompleted {
		notify.Send(middleware.GetNotifier(c), notify.GatewayPaidText(result.Payment))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  result.Payment.Status,
	})
}
