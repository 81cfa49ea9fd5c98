package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/payments"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/store"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/upstream"
)

type CheckoutConfig struct {
	Currency   string
	SuccessURL string
	CancelURL  string
}

// Checkout opens hosted payment pages. A completed payment does not
// register the buyer; registration stays a separate call.
type Checkout struct {
	events   store.EventStore
	provider payments.Provider
	guard    *upstream.Guard
	cfg      CheckoutConfig
}

// NewCheckout accepts a nil provider when payments are disabled.
func NewCheckout(events store.EventStore, provider payments.Provider, guard *upstream.Guard, cfg CheckoutConfig) *Checkout {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	return &Checkout{events: events, provider: provider, guard: guard, cfg: cfg}
}

type CheckoutSession struct {
	URL string `json:"url"`
}

func (s *Checkout) CreateCheckoutSession(ctx context.Context, eventID, userID uuid.UUID) (*CheckoutSession, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound(eventNotFound)
		}
		return nil, fmt.Errorf("loading event: %w", err)
	}
	if event.IsFree() {
		return nil, newError(ErrNotApplicable, "This event is free.", nil)
	}
	if s.provider == nil {
		return nil, newError(ErrUpstream, "Payments are not configured.", nil)
	}

	req := payments.CheckoutRequest{
		Currency: s.cfg.Currency,
		Item: payments.LineItem{
			Name:        event.Title,
			Description: event.Description,
			UnitAmount:  payments.ToMinorUnits(event.Price),
			Quantity:    1,
		},
		ReferenceID: fmt.Sprintf("%s:%s", event.ID, userID),
		SuccessURL:  s.cfg.SuccessURL,
		CancelURL:   s.cfg.CancelURL,
	}

	call := func(ctx context.Context) (string, error) {
		return s.provider.CreateCheckout(ctx, req)
	}
	var url string
	if s.guard != nil {
		url, err = s.guard.Do(ctx, call)
	} else {
		url, err = call(ctx)
	}
	if err != nil {
		return nil, upstreamError(err)
	}
	return &CheckoutSession{URL: url}, nil
}

func upstreamError(err error) *Error {
	var providerErr *payments.ProviderError
	if errors.As(err, &providerErr) {
		return newError(ErrUpstream, providerErr.Message, err)
	}
	return newError(ErrUpstream, err.Error(), err)
}
