package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/farellandr/rifas/internal/models"
)

// Notifier delivers short plain-text messages to the raffle operator.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Nop discards every message.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }

func ReservationText(payment models.Payment, raffle models.Raffle, user models.User) string {
	return fmt.Sprintf(
		"Nueva reserva en %s\nComprador: %s (%s)\nNúmeros: %s\nMonto: %s\nMétodo: %s\nPago: %s",
		raffle.Title,
		user.Name, user.Email,
		strings.Join(payment.Numbers, ", "),
		payment.Amount.StringFixed(2),
		payment.Method,
		payment.ID,
	)
}

func ProofText(payment models.Payment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Comprobante recibido para el pago %s\nNúmeros: %s\nMonto: %s",
		payment.ID, strings.Join(payment.Numbers, ", "), payment.Amount.StringFixed(2))
	if payment.ProofReference != nil {
		fmt.Fprintf(&b, "\nReferencia: %s", *payment.ProofReference)
	}
	if payment.BinanceTransactionID != nil {
		fmt.Fprintf(&b, "\nTransacción: %s", *payment.BinanceTransactionID)
	}
	return b.String()
}

func GatewayPaidText(payment models.Payment) string {
	return fmt.Sprintf("Pago con tarjeta confirmado: %s\nNúmeros: %s\nMonto: %s",
		payment.ID, strings.Join(payment.Numbers, ", "), payment.Amount.StringFixed(2))
}
