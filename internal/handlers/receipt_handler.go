package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/farellandr/rifas/internal/helpers"
	"github.com/farellandr/rifas/internal/middleware"
	"github.com/farellandr/rifas/internal/models"
)

// GetPaymentReceipt renders a signed QR code for a completed payment.
func GetPaymentReceipt(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid payment ID.")
		return
	}

	svc := mustServices(c)
	if svc == nil {
		return
	}
	signer := middleware.GetSigner(c)
	if signer == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Receipt signing is not configured.")
		return
	}

	payment, err := svc.Payments.Get(c.Request.Context(), paymentID)
	if err != nil {
		respondServiceError(c, err, "Failed to load payment.")
		return
	}
	if payment.Status != models.PaymentCompleted {
		helpers.RespondWithError(c, http.StatusConflict, "Receipts are only available for completed payments.")
		return
	}

	qrImage, err := qrcode.Encode(signer.Payload(payment.ID, payment.RaffleID, payment.Numbers), qrcode.Medium, 256)
	if err != nil {
		helpers.RespondInternalError(c, "Failed to generate QR code.", err)
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}

// ValidateReceipt checks a scanned receipt payload against the signature and
// the current payment state.
func ValidateReceipt(c *gin.Context) {
	var req struct {
		QRData string `json:"qr_data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	svc := mustServices(c)
	if svc == nil {
		return
	}
	signer := middleware.GetSigner(c)
	if signer == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Receipt signing is not configured.")
		return
	}

	paymentID, ok := signer.Verify(req.QRData)
	if !ok {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid QR code signature.")
		return
	}

	payment, err := svc.Payments.Get(c.Request.Context(), paymentID)
	if err != nil {
		respondServiceError(c, err, "Failed to load payment.")
		return
	}
	if payment.Status != models.PaymentCompleted {
		helpers.RespondWithError(c, http.StatusConflict, "Payment is no longer completed.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":   true,
		"payment": newPaymentView(*payment),
	})
}
