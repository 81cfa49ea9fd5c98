// Package payments creates hosted checkout pages with an external payment
// provider and hands back the URL the buyer should be redirected to.
package payments

import (
	"context"
	"fmt"
	"math"
	"strings"
)

type Provider interface {
	Name() string
	// CreateCheckout returns the hosted checkout URL.
	CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error)
}

type LineItem struct {
	Name        string
	Description string
	// UnitAmount is in minor currency units (cents).
	UnitAmount int64
	Quantity   int64
}

type CheckoutRequest struct {
	Currency    string
	Item        LineItem
	ReferenceID string
	SuccessURL  string
	CancelURL   string
}

// ToMinorUnits converts a major-unit price to cents, rounding half away
// from zero.
func ToMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// ProviderError carries the provider's own message so it can be shown to
// the caller.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// New builds the provider selected in configuration. "none" disables
// checkout entirely and returns a nil provider.
func New(name, stripeKey, xenditKey string) (Provider, error) {
	switch strings.ToLower(name) {
	case "stripe":
		if stripeKey == "" {
			return nil, fmt.Errorf("stripe secret key is not configured")
		}
		return NewStripeProvider(stripeKey), nil
	case "xendit":
		if xenditKey == "" {
			return nil, fmt.Errorf("xendit secret key is not configured")
		}
		return NewXenditProvider(xenditKey), nil
	case "", "none":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown payment provider %q", name)
}
