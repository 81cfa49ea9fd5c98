package payments

import (
	"context"

	"github.com/xendit/xendit-go/v6"
	"github.com/xendit/xendit-go/v6/invoice"
)

// XenditProvider issues hosted invoices; the invoice URL plays the role of
// the checkout page.
type XenditProvider struct {
	client *xendit.APIClient
}

func NewXenditProvider(secretKey string) *XenditProvider {
	return &XenditProvider{client: xendit.NewClient(secretKey)}
}

func (p *XenditProvider) Name() string { return "xendit" }

func (p *XenditProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error) {
	unitPrice := float64(req.Item.UnitAmount) / 100
	amount := unitPrice * float64(req.Item.Quantity)

	item := invoice.NewInvoiceItem(req.Item.Name, float32(unitPrice), float32(req.Item.Quantity))
	body := invoice.NewCreateInvoiceRequest(req.ReferenceID, amount)
	body.SetCurrency(req.Currency)
	body.SetItems([]invoice.InvoiceItem{*item})
	body.SetSuccessRedirectUrl(req.SuccessURL)
	body.SetFailureRedirectUrl(req.CancelURL)
	if req.Item.Description != "" {
		body.SetDescription(req.Item.Description)
	}

	resp, _, xerr := p.client.InvoiceApi.CreateInvoice(ctx).
		CreateInvoiceRequest(*body).
		Execute()
	if xerr != nil {
		return "", &ProviderError{
			Provider: p.Name(),
			Message:  xerr.Error(),
			Err:      xerr,
		}
	}
	return resp.GetInvoiceUrl(), nil
}
