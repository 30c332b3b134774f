package notify

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farellandr/rifas/internal/models"
)

func TestReservationText(t *testing.T) {
	payment := models.Payment{
		ID:      uuid.New(),
		Amount:  decimal.RequireFromString("50"),
		Method:  models.MethodZelle,
		Numbers: []string{"007", "123"},
	}
	text := ReservationText(payment, models.Raffle{Title: "Moto"}, models.User{Name: "Ana", Email: "ana@example.com"})

	for _, want := range []string{"Moto", "Ana", "007, 123", "50.00", "zelle", payment.ID.String()} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in %q", want, text)
		}
	}
}

func TestProofTextOptionalFields(t *testing.T) {
	ref := "REF-9"
	text := ProofText(models.Payment{ID: uuid.New(), Amount: decimal.NewFromInt(5), Numbers: []string{"001"}, ProofReference: &ref})
	if !strings.Contains(text, "REF-9") {
		t.Errorf("Expected reference in %q", text)
	}
	if strings.Contains(text, "Transacción") {
		t.Errorf("Unexpected transaction line in %q", text)
	}
}

func TestSendNilNotifier(t *testing.T) {
	Send(nil, "ignored")
	Send(Nop{}, "ignored")
}
