package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farellandr/rifas/internal/helpers"
	"github.com/farellandr/rifas/internal/logger"
	"github.com/farellandr/rifas/internal/middleware"
	"github.com/farellandr/rifas/internal/services"
)

type UpdatePaymentStatusRequest struct {
	PaymentID string `json:"paymentId" binding:"required"`
	Status    string `json:"status" binding:"required"`
}

type AssignNumbersRequest struct {
	RifaID  string   `json:"rifaId" binding:"required"`
	UserID  string   `json:"userId" binding:"required"`
	Numbers []string `json:"numbers" binding:"required,min=1"`
}

type CreateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

func GetDashboard(c *gin.Context) {
	svc := mustServices(c)
	if svc == nil {
		return
	}

	stats, err := svc.Stats.Dashboard(c.Request.Context())
	if err != nil {
		helpers.RespondInternalError(c, "Failed to load dashboard.", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

func ListPayments(c *gin.Context) {
	filter := services.PaymentFilter{Status: c.Query("status")}
	if rifaID := c.Query("rifaId"); rifaID != "" {
		id, err := uuid.Parse(rifaID)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid raffle ID.")
			return
		}
		filter.RaffleID = id
	}

	svc := mustServices(c)
	if svc == nil {
		return
	}

	payments, err := svc.Payments.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve payments.")
		return
	}

	views := make([]paymentView, len(payments))
	for i, p := range payments {
		views[i] = newPaymentView(p)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"payments": views,
	})
}

func UpdatePaymentStatus(c *gin.Context) {
	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Payment ID and status are required.")
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

	result, err := svc.Verification.Verify(c.Request.Context(), paymentID, req.Status)
	if err != nil {
		respondServiceError(c, err, "Failed to update payment.")
		return
	}

	if result.Changed {
		logger.Info("payment verified",
			zap.String("payment_id", paymentID.String()),
			zap.String("status", result.Payment.Status),
			zap.String("admin", c.GetString(middleware.AdminUsernameKey)))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment status updated successfully.",
		"payment": newPaymentView(result.Payment),
	})
}

func AssignNumbers(c *gin.Context) {
	var req AssignNumbersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Raffle, user and numbers are required.")
		return
	}

	raffleID, err := uuid.Parse(req.RifaID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid raffle ID.")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	svc := mustServices(c)
	if svc == nil {
		return
	}

	payment, err := svc.Assignments.Assign(c.Request.Context(), services.AssignRequest{
		RaffleID: raffleID,
		UserID:   userID,
		Numbers:  req.Numbers,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to assign numbers.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Numbers assigned successfully.",
		"paymentId": payment.ID,
		"numbers":   payment.Numbers,
	})
}

func ListUsers(c *gin.Context) {
	svc := mustServices(c)
	if svc == nil {
		return
	}

	users, err := svc.Users.List(c.Request.Context())
	if err != nil {
		helpers.RespondInternalError(c, "Failed to retrieve users.", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
	})
}

func CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	svc := mustServices(c)
	if svc == nil {
		return
	}

	user, err := svc.Users.Create(c.Request.Context(), req.Name, req.Email, req.Phone)
	if err != nil {
		respondServiceError(c, err, "Failed to create user.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    user,
	})
}
