package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farellandr/rifas/internal/helpers"
	"github.com/farellandr/rifas/internal/metrics"
	"github.com/farellandr/rifas/internal/models"
)

// ProofInput carries what a buyer reports about an off-gateway transfer.
// Fields left empty are stored as NULL.
type ProofInput struct {
	ImageURL      string
	BankOrigin    string
	SenderPhone   string
	SenderID      string
	Reference     string
	Amount        string
	ZelleEmail    string
	TransactionID string
}

type ProofService struct {
	db *gorm.DB
}

func NewProofService(db *gorm.DB) *ProofService {
	return &ProofService{db: db}
}

func (s *ProofService) Submit(ctx context.Context, paymentID uuid.UUID, in ProofInput) (*models.Payment, error) {
	image := helpers.NullableString(in.ImageURL)
	reference := helpers.NullableString(in.Reference)
	txID := helpers.NullableString(in.TransactionID)
	if image == nil && reference == nil && txID == nil {
		return nil, fmt.Errorf("%w: proof image, reference or transaction id is required", ErrInvalidInput)
	}

	var payment models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, "id = ?", paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if payment.Status != models.PaymentPending {
			return ErrStatusConflict
		}

		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, models.PaymentPending).
			Updates(map[string]interface{}{
				"proof_image_url":        image,
				"bank_origin":            helpers.NullableString(in.BankOrigin),
				"sender_phone":           helpers.NullableString(in.SenderPhone),
				"sender_id":              helpers.NullableString(in.SenderID),
				"proof_reference":        reference,
				"proof_amount":           helpers.NullableString(in.Amount),
				"zelle_email":            helpers.NullableString(in.ZelleEmail),
				"binance_transaction_id": txID,
				"proof_submitted_at":     time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrStatusConflict
		}
		return tx.First(&payment, "id = ?", payment.ID).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordProof()
	return &payment, nil
}
