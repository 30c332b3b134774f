package gateway

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/farellandr/rifas/internal/models"
)

type InvoiceRequest struct {
	ExternalID  string
	Amount      decimal.Decimal
	PayerEmail  string
	Description string
	SuccessURL  string
}

type Invoice struct {
	ID  string
	URL string
}

// Gateway opens hosted checkout invoices for card payments.
type Gateway interface {
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error)
}

// InvoiceCallback is the body Xendit posts when an invoice changes state.
type InvoiceCallback struct {
	ID            string  `json:"id"`
	ExternalID    string  `json:"external_id" binding:"required"`
	Status        string  `json:"status" binding:"required"`
	PaidAmount    float64 `json:"paid_amount"`
	PaymentMethod string  `json:"payment_method"`
	PaidAt        string  `json:"paid_at"`
}

// PaymentStatus maps an invoice status to the payment status it settles.
// ok is false for statuses that require no action.
func (cb InvoiceCallback) PaymentStatus() (status string, ok bool) {
	switch strings.ToUpper(cb.Status) {
	case "PAID", "SETTLED":
		return models.PaymentCompleted, true
	case "EXPIRED":
		return models.PaymentFailed, true
	}
	return "", false
}
