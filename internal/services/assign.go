package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/farellandr/rifas/internal/helpers"
	"github.com/farellandr/rifas/internal/models"
)

type AssignRequest struct {
	RaffleID uuid.UUID
	UserID   uuid.UUID
	Numbers  []string
}

type AssignmentService struct {
	db *gorm.DB
}

func NewAssignmentService(db *gorm.DB) *AssignmentService {
	return &AssignmentService{db: db}
}

// Assign hands numbers straight to a user as paid, recording a completed
// admin_assign payment for them.
func (s *AssignmentService) Assign(ctx context.Context, req AssignRequest) (*models.Payment, error) {
	if len(req.Numbers) == 0 {
		return nil, fmt.Errorf("%w: no numbers selected", ErrInvalidInput)
	}
	numbers, dup := helpers.TrimNumbers(req.Numbers)
	if dup != "" {
		return nil, fmt.Errorf("%w: number %s selected twice", ErrInvalidInput, dup)
	}

	var payment models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var raffle models.Raffle
		if err := tx.First(&raffle, "id = ?", req.RaffleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRaffleNotFound
			}
			return err
		}

		var user models.User
		if err := tx.First(&user, "id = ?", req.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		now := time.Now()
		reference := fmt.Sprintf("ADMIN_%d", now.UnixMilli())
		payment = models.Payment{
			ID:        uuid.New(),
			UserID:    user.ID,
			RaffleID:  raffle.ID,
			Amount:    raffle.TicketPrice.Mul(decimal.NewFromInt(int64(len(numbers)))),
			Method:    models.MethodAdminAssign,
			Status:    models.PaymentCompleted,
			Numbers:   numbers,
			Reference: &reference,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		res := tx.Model(&models.RaffleNumber{}).
			Where("raffle_id = ? AND number IN ? AND status = ?", raffle.ID, numbers, models.NumberAvailable).
			Updates(map[string]interface{}{
				"status":      models.NumberPaid,
				"user_id":     user.ID,
				"payment_id":  payment.ID,
				"reserved_at": now,
				"paid_at":     now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(numbers)) {
			return ErrNumbersUnavailable
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
