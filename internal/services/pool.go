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
	"github.com/farellandr/rifas/internal/models"
)

const (
	DefaultTotalNumbers = 1000
	MaxTotalNumbers     = 100000
	poolBatchSize       = 500
)

type NewRaffle struct {
	Title            string
	Description      string
	PrizeDescription string
	TicketPrice      decimal.Decimal
	TotalNumbers     int
	StartDate        time.Time
	EndDate          time.Time
	DrawDate         time.Time
}

// RaffleSummary is an active raffle together with how many of its numbers can
// still be bought.
type RaffleSummary struct {
	models.Raffle
	AvailableNumbers int64 `json:"available_numbers"`
}

type NumberStatus struct {
	Number string `json:"number"`
	Status string `json:"status"`
}

type availableCount struct {
	RaffleID  uuid.UUID
	Available int64
}

type PoolService struct {
	db *gorm.DB
}

func NewPoolService(db *gorm.DB) *PoolService {
	return &PoolService{db: db}
}

func (s *PoolService) CreateRaffle(ctx context.Context, in NewRaffle) (*models.Raffle, error) {
	if in.TotalNumbers == 0 {
		in.TotalNumbers = DefaultTotalNumbers
	}
	if err := validateNewRaffle(in); err != nil {
		return nil, err
	}

	raffle := models.Raffle{
		Title:            strings.TrimSpace(in.Title),
		Description:      strings.TrimSpace(in.Description),
		PrizeDescription: strings.TrimSpace(in.PrizeDescription),
		TicketPrice:      in.TicketPrice.Round(2),
		TotalNumbers:     in.TotalNumbers,
		Status:           models.RaffleActive,
		StartDate:        in.StartDate,
		EndDate:          in.EndDate,
		DrawDate:         in.DrawDate,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&raffle).Error; err != nil {
			return err
		}

		width := helpers.NumberWidth(raffle.TotalNumbers)
		pool := make([]models.RaffleNumber, raffle.TotalNumbers)
		for i := range pool {
			pool[i] = models.RaffleNumber{
				RaffleID: raffle.ID,
				Number:   helpers.FormatNumber(i, width),
				Status:   models.NumberAvailable,
			}
		}
		return tx.CreateInBatches(pool, poolBatchSize).Error
	})
	if err != nil {
		return nil, err
	}
	return &raffle, nil
}

func validateNewRaffle(in NewRaffle) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	case strings.TrimSpace(in.PrizeDescription) == "":
		return fmt.Errorf("%w: prize description is required", ErrInvalidInput)
	case !in.TicketPrice.IsPositive():
		return fmt.Errorf("%w: ticket price must be greater than zero", ErrInvalidInput)
	case in.TotalNumbers < 1 || in.TotalNumbers > MaxTotalNumbers:
		return fmt.Errorf("%w: total numbers must be between 1 and %d", ErrInvalidInput, MaxTotalNumbers)
	case in.StartDate.IsZero() || in.EndDate.IsZero() || in.DrawDate.IsZero():
		return fmt.Errorf("%w: start, end and draw dates are required", ErrInvalidInput)
	case in.EndDate.Before(in.StartDate):
		return fmt.Errorf("%w: end date is before start date", ErrInvalidInput)
	case in.DrawDate.Before(in.EndDate):
		return fmt.Errorf("%w: draw date is before end date", ErrInvalidInput)
	}
	return nil
}

// ListActive returns active raffles, newest first.
func (s *PoolService) ListActive(ctx context.Context) ([]RaffleSummary, error) {
	db := s.db.WithContext(ctx)

	var raffles []models.Raffle
	if err := db.Where("status = ?", models.RaffleActive).Order("created_at DESC").Find(&raffles).Error; err != nil {
		return nil, err
	}
	if len(raffles) == 0 {
		return []RaffleSummary{}, nil
	}

	ids := make([]uuid.UUID, len(raffles))
	for i, r := range raffles {
		ids[i] = r.ID
	}

	var counts []availableCount
	err := db.Model(&models.RaffleNumber{}).
		Select("raffle_id, COUNT(*) AS available").
		Where("raffle_id IN ? AND status = ?", ids, models.NumberAvailable).
		Group("raffle_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	available := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		available[c.RaffleID] = c.Available
	}

	out := make([]RaffleSummary, len(raffles))
	for i, r := range raffles {
		out[i] = RaffleSummary{Raffle: r, AvailableNumbers: available[r.ID]}
	}
	return out, nil
}

func (s *PoolService) Numbers(ctx context.Context, raffleID uuid.UUID) ([]NumberStatus, error) {
	db := s.db.WithContext(ctx)

	var raffle models.Raffle
	if err := db.Select("id").First(&raffle, "id = ?", raffleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRaffleNotFound
		}
		return nil, err
	}

	var out []NumberStatus
	err := db.Model(&models.RaffleNumber{}).
		Select("number, status").
		Where("raffle_id = ?", raffleID).
		Order("number ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PoolService) SetStatus(ctx context.Context, raffleID uuid.UUID, status string) (*models.Raffle, error) {
	if !models.ValidRaffleStatus(status) {
		return nil, ErrInvalidStatus
	}

	var raffle models.Raffle
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&raffle, "id = ?", raffleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRaffleNotFound
			}
			return err
		}
		if err := tx.Model(&raffle).Update("status", status).Error; err != nil {
			return err
		}
		raffle.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &raffle, nil
}
