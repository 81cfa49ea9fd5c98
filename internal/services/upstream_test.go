package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/payments"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/upstream"
)

type fakeProvider struct {
	calls int
	last  payments.CheckoutRequest
	url   string
	err   error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) CreateCheckout(ctx context.Context, req payments.CheckoutRequest) (string, error) {
	p.calls++
	p.last = req
	return p.url, p.err
}

type fakeMeetings struct {
	calls int
	link  string
	err   error
}

func (m *fakeMeetings) CreateMeeting(ctx context.Context, topic string, start time.Time) (string, error) {
	m.calls++
	return m.link, m.err
}

func TestCheckoutFreeEventNotApplicable(t *testing.T) {
	f := newFixture()
	provider := &fakeProvider{url: "https://pay.example/s/1"}
	checkout := NewCheckout(f.store, provider, nil, CheckoutConfig{})
	event := f.event(t, uuid.New(), EventInput{Price: 0})

	_, err := checkout.CreateCheckoutSession(context.Background(), event.ID, uuid.New())
	if !errors.Is(err, ErrNotApplicable) || MessageOf(err) != "This event is free." {
		t.Fatalf("err = %v", err)
	}
	if provider.calls != 0 {
		t.Error("provider called for a free event")
	}
}

func TestCheckoutPaidEvent(t *testing.T) {
	f := newFixture()
	provider := &fakeProvider{url: "https://pay.example/s/1"}
	checkout := NewCheckout(f.store, provider, upstream.NewGuard("payments-test", time.Second), CheckoutConfig{
		SuccessURL: "https://app.example/ok",
		CancelURL:  "https://app.example/cancel",
	})
	event := f.event(t, uuid.New(), EventInput{Title: "Workshop", Price: 19.99})
	buyer := uuid.New()

	session, err := checkout.CreateCheckoutSession(context.Background(), event.ID, buyer)
	if err != nil {
		t.Fatal(err)
	}
	if session.URL != "https://pay.example/s/1" {
		t.Errorf("url = %q", session.URL)
	}
	req := provider.last
	if req.Item.UnitAmount != 1999 || req.Item.Quantity != 1 || req.Item.Name != "Workshop" {
		t.Errorf("line item = %+v", req.Item)
	}
	if req.Currency != "usd" || req.SuccessURL != "https://app.example/ok" {
		t.Errorf("request = %+v", req)
	}

	stored, _ := f.store.GetEvent(context.Background(), event.ID)
	if stored.HasAttendee(buyer) {
		t.Error("checkout must not register the buyer")
	}
}

func TestCheckoutProviderErrorSurfacesMessage(t *testing.T) {
	f := newFixture()
	provider := &fakeProvider{err: &payments.ProviderError{Provider: "fake", Message: "Card declined"}}
	checkout := NewCheckout(f.store, provider, nil, CheckoutConfig{})
	event := f.event(t, uuid.New(), EventInput{Price: 5})

	_, err := checkout.CreateCheckoutSession(context.Background(), event.ID, uuid.New())
	if !errors.Is(err, ErrUpstream) || MessageOf(err) != "Card declined" {
		t.Fatalf("err = %v", err)
	}
}

func TestCheckoutWithoutProvider(t *testing.T) {
	f := newFixture()
	checkout := NewCheckout(f.store, nil, nil, CheckoutConfig{})
	event := f.event(t, uuid.New(), EventInput{Price: 5})

	_, err := checkout.CreateCheckoutSession(context.Background(), event.ID, uuid.New())
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v", err)
	}
	if _, err := checkout.CreateCheckoutSession(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing event err = %v", err)
	}
}

func TestZoomMeetingOnlyForVirtual(t *testing.T) {
	f := newFixture()
	client := &fakeMeetings{link: "https://zoom.example/j/9"}
	meetings := NewMeetings(f.store, client, upstream.NewGuard("zoom-test", time.Second))
	physical := f.event(t, uuid.New(), EventInput{Type: "physical"})
	virtual := f.event(t, uuid.New(), EventInput{Type: "virtual"})

	_, err := meetings.CreateZoomMeeting(context.Background(), physical.ID)
	if !errors.Is(err, ErrNotApplicable) {
		t.Fatalf("physical err = %v", err)
	}
	if client.calls != 0 {
		t.Fatal("provider called for a physical event")
	}

	updated, err := meetings.CreateZoomMeeting(context.Background(), virtual.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.ZoomLink == nil || *updated.ZoomLink != "https://zoom.example/j/9" {
		t.Fatalf("zoom link = %v", updated.ZoomLink)
	}
	stored, _ := f.store.GetEvent(context.Background(), virtual.ID)
	if stored.ZoomLink == nil || *stored.ZoomLink != "https://zoom.example/j/9" {
		t.Error("zoom link not persisted")
	}
}

func TestZoomMeetingProviderFailure(t *testing.T) {
	f := newFixture()
	client := &fakeMeetings{err: errors.New("zoom exploded")}
	meetings := NewMeetings(f.store, client, nil)
	virtual := f.event(t, uuid.New(), EventInput{Type: "virtual"})

	_, err := meetings.CreateZoomMeeting(context.Background(), virtual.ID)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("err = %v", err)
	}
	stored, _ := f.store.GetEvent(context.Background(), virtual.ID)
	if stored.ZoomLink != nil {
		t.Error("link stored after a failed call")
	}
}
