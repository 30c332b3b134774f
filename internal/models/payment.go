package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

const (
	MethodCard        = "card"
	MethodZelle       = "zelle"
	MethodPagoMovil   = "pago_movil"
	MethodBinance     = "binance"
	MethodCash        = "efectivo"
	MethodAdminAssign = "admin_assign"
)

type Payment struct {
	ID       uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User     *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RaffleID uuid.UUID       `gorm:"type:uuid;not null;index" json:"raffle_id"`
	Raffle   *Raffle         `gorm:"foreignKey:RaffleID" json:"raffle,omitempty"`
	Amount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Method   string          `gorm:"not null" json:"method"`
	Status   string          `gorm:"not null;default:'pending';index" json:"status"`
	Numbers  []string        `gorm:"serializer:json;type:text;not null" json:"numbers"`

	Reference *string `json:"reference,omitempty"`

	ProofImageURL        *string    `json:"proof_image_url,omitempty"`
	BankOrigin           *string    `json:"bank_origin,omitempty"`
	SenderPhone          *string    `json:"sender_phone,omitempty"`
	SenderID             *string    `json:"sender_id,omitempty"`
	ProofReference       *string    `json:"proof_reference,omitempty"`
	ProofAmount          *string    `json:"proof_amount,omitempty"`
	ZelleEmail           *string    `json:"zelle_email,omitempty"`
	BinanceTransactionID *string    `json:"binance_transaction_id,omitempty"`
	ProofSubmittedAt     *time.Time `json:"proof_submitted_at,omitempty"`

	GatewayInvoiceID *string `json:"gateway_invoice_id,omitempty"`
	GatewayURL       *string `json:"gateway_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (payment *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return
}

// ValidPaymentStatus reports whether s is a payment status an admin may set.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// BuyerMethod reports whether m can be chosen by a buyer at checkout.
func BuyerMethod(m string) bool {
	switch m {
	case MethodCard, MethodZelle, MethodPagoMovil, MethodBinance, MethodCash:
		return true
	}
	return false
}
