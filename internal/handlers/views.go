package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farellandr/rifas/internal/models"
)

type userView struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone,omitempty"`
}

type raffleRef struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type proofView struct {
	BankOrigin    *string `json:"bankOrigin,omitempty"`
	SenderPhone   *string `json:"senderPhone,omitempty"`
	SenderID      *string `json:"senderId,omitempty"`
	Reference     *string `json:"reference,omitempty"`
	Amount        *string `json:"amount,omitempty"`
	ZelleEmail    *string `json:"zelleEmail,omitempty"`
	TransactionID *string `json:"transactionId,omitempty"`
}

type paymentView struct {
	ID               uuid.UUID       `json:"id"`
	Status           string          `json:"status"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentMethod    string          `json:"paymentMethod"`
	Numbers          []string        `json:"numbers"`
	PaymentReference *string         `json:"paymentReference"`
	PaymentProofURL  *string         `json:"paymentProofUrl"`
	PaymentDetails   *proofView      `json:"paymentDetails"`
	ProofSubmittedAt *time.Time      `json:"proofSubmittedAt"`
	PaymentURL       *string         `json:"paymentUrl,omitempty"`
	User             *userView       `json:"user,omitempty"`
	Rifa             *raffleRef      `json:"rifa,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func newPaymentView(p models.Payment) paymentView {
	v := paymentView{
		ID:               p.ID,
		Status:           p.Status,
		Amount:           p.Amount,
		PaymentMethod:    p.Method,
		Numbers:          p.Numbers,
		PaymentReference: p.Reference,
		PaymentProofURL:  p.ProofImageURL,
		ProofSubmittedAt: p.ProofSubmittedAt,
		PaymentURL:       p.GatewayURL,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if v.Numbers == nil {
		v.Numbers = []string{}
	}
	if p.ProofSubmittedAt != nil {
		v.PaymentDetails = &proofView{
			BankOrigin:    p.BankOrigin,
			SenderPhone:   p.SenderPhone,
			SenderID:      p.SenderID,
			Reference:     p.ProofReference,
			Amount:        p.ProofAmount,
			ZelleEmail:    p.ZelleEmail,
			TransactionID: p.BinanceTransactionID,
		}
	}
	if p.User != nil {
		v.User = &userView{ID: p.User.ID, Name: p.User.Name, Email: p.User.Email, Phone: p.User.Phone}
	}
	if p.Raffle != nil {
		v.Rifa = &raffleRef{ID: p.Raffle.ID, Title: p.Raffle.Title}
	}
	return v
}
