package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RaffleActive    = "active"
	RaffleCompleted = "completed"
	RaffleCancelled = "cancelled"
)

type Raffle struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Title            string          `gorm:"not null" json:"title"`
	Description      string          `json:"description"`
	PrizeDescription string          `gorm:"not null" json:"prize_description"`
	TicketPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"ticket_price"`
	TotalNumbers     int             `gorm:"not null;default:1000" json:"total_numbers"`
	Status           string          `gorm:"not null;default:'active';index" json:"status"`
	StartDate        time.Time       `gorm:"not null" json:"start_date"`
	EndDate          time.Time       `gorm:"not null" json:"end_date"`
	DrawDate         time.Time       `gorm:"not null" json:"draw_date"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (raffle *Raffle) BeforeCreate(tx *gorm.DB) (err error) {
	if raffle.ID == uuid.Nil {
		raffle.ID = uuid.New()
	}
	return
}

// ValidRaffleStatus reports whether s is one of the raffle states.
func ValidRaffleStatus(s string) bool {
	switch s {
	case RaffleActive, RaffleCompleted, RaffleCancelled:
		return true
	}
	return false
}
