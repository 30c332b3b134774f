package gateway

import (
	"testing"

	"github.com/farellandr/rifas/internal/models"
)

func TestCallbackPaymentStatus(t *testing.T) {
	tests := []struct {
		status string
		want   string
		ok     bool
	}{
		{"PAID", models.PaymentCompleted, true},
		{"settled", models.PaymentCompleted, true},
		{"EXPIRED", models.PaymentFailed, true},
		{"PENDING", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := InvoiceCallback{Status: tt.status}.PaymentStatus()
		if got != tt.want || ok != tt.ok {
			t.Errorf("PaymentStatus(%q) = %q, %v; want %q, %v", tt.status, got, ok, tt.want, tt.ok)
		}
	}
}
