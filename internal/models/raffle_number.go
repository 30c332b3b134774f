package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	NumberAvailable = "available"
	NumberReserved  = "reserved"
	NumberPaid      = "paid"
)

// RaffleNumber is one ticket slot of a raffle pool. UserID and PaymentID are
// nil exactly when Status is available.
type RaffleNumber struct {
	RaffleID   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"raffle_id"`
	Number     string     `gorm:"primaryKey;size:8" json:"number"`
	Status     string     `gorm:"not null;default:'available';index" json:"status"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	PaymentID  *uuid.UUID `gorm:"type:uuid;index" json:"payment_id,omitempty"`
	ReservedAt *time.Time `json:"reserved_at,omitempty"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
}
