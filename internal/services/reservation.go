package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/farellandr/rifas/internal/helpers"
	"github.com/farellandr/rifas/internal/metrics"
	"github.com/farellandr/rifas/internal/models"
)

type Buyer struct {
	Name  string
	Email string
	Phone string
}

type ReservationRequest struct {
	RaffleID uuid.UUID
	Numbers  []string
	Buyer    Buyer
	Method   string
}

// Reservation is the result of a successful Reserve: the pending payment and
// the raffle and buyer it belongs to.
type Reservation struct {
	Payment models.Payment
	Raffle  models.Raffle
	User    models.User
}

type ReservationService struct {
	db *gorm.DB
}

func NewReservationService(db *gorm.DB) *ReservationService {
	return &ReservationService{db: db}
}

// Reserve opens a pending payment for the requested numbers. Either every
// number moves to reserved under the new payment or nothing is written.
func (s *ReservationService) Reserve(ctx context.Context, req ReservationRequest) (*Reservation, error) {
	numbers, buyer, method, err := validateReservation(req)
	if err != nil {
		metrics.RecordReservation("invalid", 0)
		return nil, err
	}

	var out Reservation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var raffle models.Raffle
		if err := tx.Where("id = ? AND status = ?", req.RaffleID, models.RaffleActive).First(&raffle).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRaffleNotFound
			}
			return err
		}

		user, err := upsertBuyer(tx, buyer)
		if err != nil {
			return err
		}

		payment := models.Payment{
			ID:       uuid.New(),
			UserID:   user.ID,
			RaffleID: raffle.ID,
			Amount:   raffle.TicketPrice.Mul(decimal.NewFromInt(int64(len(numbers)))),
			Method:   method,
			Status:   models.PaymentPending,
			Numbers:  numbers,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		res := tx.Model(&models.RaffleNumber{}).
			Where("raffle_id = ? AND number IN ? AND status = ?", raffle.ID, numbers, models.NumberAvailable).
			Updates(map[string]interface{}{
				"status":      models.NumberReserved,
				"user_id":     user.ID,
				"payment_id":  payment.ID,
				"reserved_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(numbers)) {
			return ErrNumbersUnavailable
		}

		out = Reservation{Payment: payment, Raffle: raffle, User: *user}
		return nil
	})

	switch {
	case err == nil:
		metrics.RecordReservation("success", len(numbers))
		return &out, nil
	case errors.Is(err, ErrNumbersUnavailable):
		metrics.RecordReservation("unavailable", 0)
	case errors.Is(err, ErrRaffleNotFound):
		metrics.RecordReservation("not_found", 0)
	default:
		metrics.RecordReservation("error", 0)
	}
	return nil, err
}

func validateReservation(req ReservationRequest) ([]string, Buyer, string, error) {
	if len(req.Numbers) == 0 {
		return nil, Buyer{}, "", fmt.Errorf("%w: no numbers selected", ErrInvalidInput)
	}
	numbers, dup := helpers.TrimNumbers(req.Numbers)
	if dup != "" {
		return nil, Buyer{}, "", fmt.Errorf("%w: number %s selected twice", ErrInvalidInput, dup)
	}
	for _, n := range numbers {
		if n == "" {
			return nil, Buyer{}, "", fmt.Errorf("%w: empty number", ErrInvalidInput)
		}
	}

	buyer := Buyer{
		Name:  strings.TrimSpace(req.Buyer.Name),
		Email: helpers.NormalizeEmail(req.Buyer.Email),
		Phone: strings.TrimSpace(req.Buyer.Phone),
	}
	if buyer.Name == "" || buyer.Email == "" {
		return nil, Buyer{}, "", fmt.Errorf("%w: buyer name and email are required", ErrInvalidInput)
	}

	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = models.MethodCard
	}
	if !models.BuyerMethod(method) {
		return nil, Buyer{}, "", fmt.Errorf("%w: unsupported payment method %q", ErrInvalidInput, method)
	}
	return numbers, buyer, method, nil
}

// upsertBuyer finds the user by email, overwriting name and phone, or
// creates one.
func upsertBuyer(tx *gorm.DB, buyer Buyer) (*models.User, error) {
	var user models.User
	err := tx.Where("email = ?", buyer.Email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{Name: buyer.Name, Email: buyer.Email, Phone: buyer.Phone}
		if err := tx.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	case err != nil:
		return nil, err
	}

	if user.Name != buyer.Name || user.Phone != buyer.Phone {
		err = tx.Model(&user).Updates(map[string]interface{}{
			"name":  buyer.Name,
			"phone": buyer.Phone,
		}).Error
		if err != nil {
			return nil, err
		}
		user.Name, user.Phone = buyer.Name, buyer.Phone
	}
	return &user, nil
}
