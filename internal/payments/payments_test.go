package payments

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stripe/stripe-go/v76"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		price float64
		want  int64
	}{
		{0, 0},
		{1, 100},
		{19.99, 1999},
		{0.1 + 0.2, 30},
		{4.35, 435},
		{1234.5, 123450},
	}
	for _, tt := range tests {
		if got := ToMinorUnits(tt.price); got != tt.want {
			t.Errorf("ToMinorUnits(%v) = %d, want %d", tt.price, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		stripe   string
		xendit   string
		wantName string
		wantErr  bool
	}{
		{"stripe", "stripe", "sk_test", "", "stripe", false},
		{"stripe upper", "Stripe", "sk_test", "", "stripe", false},
		{"stripe without key", "stripe", "", "", "", true},
		{"xendit", "xendit", "", "xnd_test", "xendit", false},
		{"xendit without key", "xendit", "sk_test", "", "", true},
		{"none", "none", "", "", "", false},
		{"empty", "", "", "", "", false},
		{"unknown", "paypal", "", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.provider, tt.stripe, tt.xendit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantName == "" {
				if p != nil {
					t.Fatalf("provider = %v, want nil", p)
				}
				return
			}
			if p == nil || p.Name() != tt.wantName {
				t.Fatalf("provider = %v, want %s", p, tt.wantName)
			}
		})
	}
}

func stripeBackend(t *testing.T, handler http.HandlerFunc) *stripe.Backends {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
}

func TestStripeCreateCheckout(t *testing.T) {
	var form url.Values
	backends := stripeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/pay/cs_test_1"}`)
	})

	p := newStripeProvider("sk_test_123", backends)
	got, err := p.CreateCheckout(context.Background(), CheckoutRequest{
		Currency:    "usd",
		Item:        LineItem{Name: "GopherCon", UnitAmount: 1999, Quantity: 1},
		ReferenceID: "event:user",
		SuccessURL:  "https://app.example/ok",
		CancelURL:   "https://app.example/cancel",
	})
	if err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}
	if got != "https://checkout.stripe.com/pay/cs_test_1" {
		t.Errorf("url = %q", got)
	}
	checks := []struct{ key, want string }{
		{"mode", "payment"},
		{"client_reference_id", "event:user"},
		{"line_items[0][price_data][unit_amount]", "1999"},
		{"line_items[0][price_data][currency]", "usd"},
		{"line_items[0][quantity]", "1"},
		{"line_items[0][price_data][product_data][name]", "GopherCon"},
	}
	for _, c := range checks {
		if form.Get(c.key) != c.want {
			t.Errorf("%s = %q, want %q", c.key, form.Get(c.key), c.want)
		}
	}
	if form.Has("line_items[0][price_data][product_data][description]") {
		t.Error("empty description should be omitted")
	}
}

func TestStripeErrorMessage(t *testing.T) {
	backends := stripeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"type":"invalid_request_error","message":"Invalid currency: zzz"}}`)
	})

	p := newStripeProvider("sk_test_123", backends)
	_, err := p.CreateCheckout(context.Background(), CheckoutRequest{
		Currency: "zzz",
		Item:     LineItem{Name: "GopherCon", UnitAmount: 100, Quantity: 1},
	})
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("err = %v, want ProviderError", err)
	}
	if providerErr.Provider != "stripe" || !strings.Contains(providerErr.Message, "Invalid currency") {
		t.Errorf("provider error = %+v", providerErr)
	}
}
