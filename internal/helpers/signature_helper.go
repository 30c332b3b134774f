package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ReceiptSigner signs the content of a payment receipt QR code.
type ReceiptSigner struct {
	SecretKey string
}

func NewReceiptSigner(secretKey string) *ReceiptSigner {
	return &ReceiptSigner{SecretKey: secretKey}
}

func (s *ReceiptSigner) Signature(paymentID, raffleID uuid.UUID, numbers []string) string {
	data := fmt.Sprintf("%s:%s:%s", paymentID.String(), raffleID.String(), strings.Join(numbers, ","))
	h := hmac.New(sha256.New, []byte(s.SecretKey))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// Payload renders the text encoded in the receipt QR code.
func (s *ReceiptSigner) Payload(paymentID, raffleID uuid.UUID, numbers []string) string {
	return fmt.Sprintf("payment:%s;raffle:%s;numbers:%s;signature:%s",
		paymentID.String(),
		raffleID.String(),
		strings.Join(numbers, ","),
		s.Signature(paymentID, raffleID, numbers),
	)
}

// Verify checks a payload produced by Payload and returns the payment id.
func (s *ReceiptSigner) Verify(payload string) (uuid.UUID, bool) {
	parts := strings.Split(payload, ";")
	if len(parts) != 4 ||
		!strings.HasPrefix(parts[0], "payment:") ||
		!strings.HasPrefix(parts[1], "raffle:") ||
		!strings.HasPrefix(parts[2], "numbers:") ||
		!strings.HasPrefix(parts[3], "signature:") {
		return uuid.Nil, false
	}

	paymentID, err := uuid.Parse(strings.TrimPrefix(parts[0], "payment:"))
	if err != nil {
		return uuid.Nil, false
	}
	raffleID, err := uuid.Parse(strings.TrimPrefix(parts[1], "raffle:"))
	if err != nil {
		return uuid.Nil, false
	}
	var numbers []string
	if joined := strings.TrimPrefix(parts[2], "numbers:"); joined != "" {
		numbers = strings.Split(joined, ",")
	}

	expected := s.Signature(paymentID, raffleID, numbers)
	if !hmac.Equal([]byte(expected), []byte(strings.TrimPrefix(parts[3], "signature:"))) {
		return uuid.Nil, false
	}
	return paymentID, true
}
