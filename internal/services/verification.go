package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farellandr/rifas/internal/metrics"
	"github.com/farellandr/rifas/internal/models"
)

type VerifyResult struct {
	Payment models.Payment
	// Changed is false when the payment already had the requested status.
	Changed bool
}

type VerificationService struct {
	db *gorm.DB
}

func NewVerificationService(db *gorm.DB) *VerificationService {
	return &VerificationService{db: db}
}

// Verify moves a payment to status and brings its numbers along: completed
// marks them paid, failed and refunded release them back to the pool. Number
// rows are written before the payment status flips, in one transaction.
func (s *VerificationService) Verify(ctx context.Context, paymentID uuid.UUID, status string) (*VerifyResult, error) {
	if !models.ValidPaymentStatus(status) {
		metrics.RecordVerification(status, "invalid")
		return nil, ErrInvalidStatus
	}

	var result VerifyResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.First(&payment, "id = ?", paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}

		previous := payment.Status
		if previous == status {
			result.Payment = payment
			return nil
		}

		now := time.Now()
		updates := map[string]interface{}{"status": status}

		switch status {
		case models.PaymentCompleted:
			if err := markNumbersPaid(tx, &payment, now); err != nil {
				return err
			}
			if payment.Reference == nil {
				updates["reference"] = fmt.Sprintf("ADMIN_VERIFIED_%s_%d", payment.ID, now.UnixMilli())
			}
		case models.PaymentFailed, models.PaymentRefunded:
			if err := releaseNumbers(tx, &payment); err != nil {
				return err
			}
		}

		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, previous).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrStatusConflict
		}

		if err := tx.First(&result.Payment, "id = ?", payment.ID).Error; err != nil {
			return err
		}
		result.Changed = true
		return nil
	})

	switch {
	case err == nil:
		metrics.RecordVerification(status, "success")
		return &result, nil
	case errors.Is(err, ErrPaymentNotFound):
		metrics.RecordVerification(status, "not_found")
	case errors.Is(err, ErrNumbersUnavailable), errors.Is(err, ErrStatusConflict):
		metrics.RecordVerification(status, "conflict")
	default:
		metrics.RecordVerification(status, "error")
	}
	return nil, err
}

// markNumbersPaid settles every number of the payment that this payment still
// holds or that went back to the pool in the meantime. A number now held by
// another payment aborts the whole verification.
func markNumbersPaid(tx *gorm.DB, payment *models.Payment, now time.Time) error {
	if len(payment.Numbers) == 0 {
		return nil
	}
	res := tx.Model(&models.RaffleNumber{}).
		Where("raffle_id = ? AND number IN ?", payment.RaffleID, payment.Numbers).
		Where("(payment_id = ? OR status = ?)", payment.ID, models.NumberAvailable).
		Updates(map[string]interface{}{
			"status":     models.NumberPaid,
			"user_id":    payment.UserID,
			"payment_id": payment.ID,
			"paid_at":    now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != int64(len(payment.Numbers)) {
		return ErrNumbersUnavailable
	}
	return nil
}

func releaseNumbers(tx *gorm.DB, payment *models.Payment) error {
	if len(payment.Numbers) == 0 {
		return nil
	}
	return tx.Model(&models.RaffleNumber{}).
		Where("raffle_id = ? AND number IN ? AND payment_id = ?", payment.RaffleID, payment.Numbers, payment.ID).
		Updates(map[string]interface{}{
			"status":      models.NumberAvailable,
			"user_id":     nil,
			"payment_id":  nil,
			"reserved_at": nil,
			"paid_at":     nil,
		}).Error
}
