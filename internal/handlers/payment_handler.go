package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/farellandr/rifas/internal/gateway"
	"github.com/farellandr/rifas/internal/helpers"
	"github.com/farellandr/rifas/internal/logger"
	"github.com/farellandr/rifas/internal/middleware"
	"github.com/farellandr/rifas/internal/models"
	"github.com/farellandr/rifas/internal/notify"
	"github.com/farellandr/rifas/internal/services"
)

const proofUploadType = "payment-proofs"

type UserInfoRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

type CreatePaymentRequest struct {
	RifaID          string          `json:"rifaId" binding:"required"`
	SelectedNumbers []string        `json:"selectedNumbers" binding:"required,min=1"`
	UserInfo        UserInfoRequest `json:"userInfo" binding:"required"`
	PaymentMethod   string          `json:"paymentMethod"`
}

type CreatePaymentResponse struct {
	Success         bool            `json:"success"`
	PaymentID       uuid.UUID       `json:"paymentId"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Message         string          `json:"message"`
	SelectedNumbers []string        `json:"selectedNumbers"`
	PaymentURL      string          `json:"paymentUrl,omitempty"`
}

// ProofRequest is the JSON variant of a proof submission; the multipart
// variant carries the same fields as form values plus a file.
type ProofRequest struct {
	PaymentID     string `json:"paymentId" form:"paymentId" binding:"required"`
	ProofImageURL string `json:"proofImageUrl" form:"proofImageUrl"`
	BankOrigin    string `json:"bankOrigin" form:"bankOrigin"`
	Phone         string `json:"phone" form:"phone"`
	Cedula        string `json:"cedula" form:"cedula"`
	Reference     string `json:"reference" form:"reference"`
	Amount        string `json:"amount" form:"amount"`
	ZelleEmail    string `json:"zelleEmail" form:"zelleEmail"`
	TransactionID string `json:"transactionId" form:"transactionId"`
}

func CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Incomplete data to process the payment.")
		return
	}

	raffleID, err := uuid.Parse(req.RifaID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid raffle ID.")
		return
	}

	svc := mustServices(c)
	if svc == nil {
		return
	}

	ctx := c.Request.Context()
	res, err := svc.Reservations.Reserve(ctx, services.ReservationRequest{
		RaffleID: raffleID,
		Numbers:  req.SelectedNumbers,
		Buyer: services.Buyer{
			Name:  req.UserInfo.Name,
			Email: req.UserInfo.Email,
			Phone: req.UserInfo.Phone,
		},
		Method: req.PaymentMethod,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to create payment.")
		return
	}

	notify.Send(middleware.GetNotifier(c), notify.ReservationText(res.Payment, res.Raffle, res.User))

	resp := CreatePaymentResponse{
		Success:         true,
		PaymentID:       res.Payment.ID,
		TotalAmount:     res.Payment.Amount,
		Message:         "Numbers reserved. The payment is pending verification by the administrator.",
		SelectedNumbers: res.Payment.Numbers,
	}

	if gw := middleware.GetGateway(c); gw != nil && res.Payment.Method == models.MethodCard {
		invoice, err := gw.CreateInvoice(ctx, gateway.InvoiceRequest{
			ExternalID:  res.Payment.ID.String(),
			Amount:      res.Payment.Amount,
			PayerEmail:  res.User.Email,
			Description: fmt.Sprintf("%s: %s", res.Raffle.Title, strings.Join(res.Payment.Numbers, ", ")),
			SuccessURL:  paymentPageURL(middleware.GetBaseURL(c), res.Payment.ID),
		})
		if err != nil {
			logger.Warn("invoice creation failed, payment left for manual verification",
				zap.String("payment_id", res.Payment.ID.String()),
				zap.Error(err))
		} else if err := svc.Payments.AttachInvoice(ctx, res.Payment.ID, invoice.ID, invoice.URL); err != nil {
			logger.Warn("failed to record invoice",
				zap.String("payment_id", res.Payment.ID.String()),
				zap.Error(err))
		} else {
			resp.PaymentURL = invoice.URL
			resp.Message = "Numbers reserved. Complete the card payment at the checkout link."
		}
	}

	c.JSON(http.StatusOK, resp)
}

func paymentPageURL(baseURL string, paymentID uuid.UUID) string {
	if baseURL == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/pago/" + paymentID.String()
}

func GetPaymentStatus(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid payment ID.")
		return
	}

	svc := mustServices(c)
	if svc == nil {
		return
	}

	payment, err := svc.Payments.Get(c.Request.Context(), paymentID)
	if err != nil {
		respondServiceError(c, err, "Failed to load payment.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"payment": newPaymentView(*payment),
	})
}

// UpdatePaymentProof accepts either a multipart upload with a "file" part or a
// JSON body referencing an already hosted image.
func UpdatePaymentProof(c *gin.Context) {
	var req ProofRequest
	var storedPath string

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBind(&req); err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "File and payment ID are required.")
			return
		}
		fileHeader, err := c.FormFile("file")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "File and payment ID are required.")
			return
		}
		if _, err := uuid.Parse(req.PaymentID); err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid payment ID.")
			return
		}

		upload := middleware.GetUploadConfig(c)
		relPath, err := helpers.UploadFile(c, fileHeader, proofUploadType, upload)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		storedPath = filepath.Join(upload.UploadBasePath, filepath.FromSlash(relPath))
		req.ProofImageURL = "/uploads/" + relPath
	} else if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Payment ID is required.")
		return
	}

	paymentID, err := uuid.Parse(req.PaymentID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid payment ID.")
		return
	}

	svc := mustServices(c)
	if svc == nil {
		return
	}

	payment, err := svc.Proofs.Submit(c.Request.Context(), paymentID, services.ProofInput{
		ImageURL:      req.ProofImageURL,
		BankOrigin:    req.BankOrigin,
		SenderPhone:   req.Phone,
		SenderID:      req.Cedula,
		Reference:     req.Reference,
		Amount:        req.Amount,
		ZelleEmail:    req.ZelleEmail,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		if storedPath != "" {
			if rmErr := helpers.DeleteFile(storedPath); rmErr != nil {
				logger.Warn("failed to remove orphaned proof", zap.String("path", storedPath), zap.Error(rmErr))
			}
		}
		respondServiceError(c, err, "Failed to save payment proof.")
		return
	}

	notify.Send(middleware.GetNotifier(c), notify.ProofText(*payment))

	resp := gin.H{
		"success": true,
		"message": "Proof received. The payment is pending verification by the administrator.",
	}
	if payment.ProofImageURL != nil {
		resp["url"] = *payment.ProofImageURL
	}
	c.JSON(http.StatusOK, resp)
}
