package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/models"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/store"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/upstream"
)

type MeetingClient interface {
	CreateMeeting(ctx context.Context, topic string, start time.Time) (string, error)
}

type Meetings struct {
	events store.EventStore
	client MeetingClient
	guard  *upstream.Guard
}

func NewMeetings(events store.EventStore, client MeetingClient, guard *upstream.Guard) *Meetings {
	return &Meetings{events: events, client: client, guard: guard}
}

// CreateZoomMeeting provisions a meeting for a virtual event and stores its
// join link. Physical events are rejected before any provider call.
func (s *Meetings) CreateZoomMeeting(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound(eventNotFound)
		}
		return nil, fmt.Errorf("loading event: %w", err)
	}
	if !event.IsVirtual() {
		return nil, newError(ErrNotApplicable, "Zoom meetings are only available for virtual events.", nil)
	}

	call := func(ctx context.Context) (string, error) {
		return s.client.CreateMeeting(ctx, event.Title, event.Date)
	}
	var link string
	if s.guard != nil {
		link, err = s.guard.Do(ctx, call)
	} else {
		link, err = call(ctx)
	}
	if err != nil {
		return nil, upstreamError(err)
	}

	if err := s.events.SetZoomLink(ctx, eventID, link); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound(eventNotFound)
		}
		return nil, fmt.Errorf("saving meeting link: %w", err)
	}
	event.ZoomLink = &link
	return event, nil
}
