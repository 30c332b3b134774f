package gateway

import (
	"context"
	"fmt"

	"github.com/xendit/xendit-go/v6"
	"github.com/xendit/xendit-go/v6/invoice"
)

type Xendit struct {
	client *xendit.APIClient
}

func NewXendit(secretKey string) *Xendit {
	return &Xendit{client: xendit.NewClient(secretKey)}
}

func (x *Xendit) CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error) {
	amount, _ := req.Amount.Float64()
	body := invoice.NewCreateInvoiceRequest(req.ExternalID, amount)
	if req.PayerEmail != "" {
		body.SetPayerEmail(req.PayerEmail)
	}
	if req.Description != "" {
		body.SetDescription(req.Description)
	}
	if req.SuccessURL != "" {
		body.SetSuccessRedirectUrl(req.SuccessURL)
	}

	resp, _, xerr := x.client.InvoiceApi.CreateInvoice(ctx).
		CreateInvoiceRequest(*body).
		Execute()
	if xerr != nil {
		return nil, fmt.Errorf("xendit: create invoice: %s", xerr.Error())
	}
	return &Invoice{ID: resp.GetId(), URL: resp.GetInvoiceUrl()}, nil
}
