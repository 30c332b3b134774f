package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farellandr/rifas/internal/models"
)

type PaymentFilter struct {
	Status   string
	RaffleID uuid.UUID
}

type PaymentService struct {
	db *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db}
}

// Get loads a payment with its buyer and raffle.
func (s *PaymentService) Get(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Raffle").
		First(&payment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentService) List(ctx context.Context, filter PaymentFilter) ([]models.Payment, error) {
	if filter.Status != "" && !models.ValidPaymentStatus(filter.Status) {
		return nil, ErrInvalidStatus
	}

	query := s.db.WithContext(ctx).Preload("User").Preload("Raffle")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RaffleID != uuid.Nil {
		query = query.Where("raffle_id = ?", filter.RaffleID)
	}

	payments := []models.Payment{}
	if err := query.Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// AttachInvoice records the gateway invoice opened for a pending payment.
func (s *PaymentService) AttachInvoice(ctx context.Context, id uuid.UUID, invoiceID, url string) error {
	res := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"gateway_invoice_id": invoiceID,
			"gateway_url":        url,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}
