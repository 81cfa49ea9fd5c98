package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/models"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/store"
)

const eventNotFound = "Event not found."

type Events struct {
	events store.EventStore
	now    func() time.Time
}

func NewEvents(events store.EventStore) *Events {
	return &Events{events: events, now: time.Now}
}

type EventInput struct {
	Title       string
	Description string
	Date        time.Time
	Type        string
	Price       float64
	Venue       string
	Media       []string
}

// EventPatch holds the fields of a partial update; nil means unchanged.
type EventPatch struct {
	Title       *string
	Description *string
	Date        *time.Time
	Type        *string
	Price       *float64
	Venue       *string
	Media       *[]string
}

type ListQuery struct {
	Page     int
	Limit    int
	Type     string
	Upcoming bool
}

type EventPage struct {
	Events []models.Event `json:"events"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

func (s *Events) Create(ctx context.Context, organizerID uuid.UUID, in EventInput) (*models.Event, error) {
	eventType, ok := models.ParseEventType(in.Type)
	if !ok {
		return nil, newError(ErrInvalid, "Event type must be physical or virtual.", nil)
	}
	if in.Price < 0 {
		return nil, newError(ErrInvalid, "Price cannot be negative.", nil)
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, newError(ErrInvalid, "Title and description are required.", nil)
	}

	event := &models.Event{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Date:        in.Date,
		Type:        eventType,
		Price:       in.Price,
		Venue:       in.Venue,
		Media:       datatypes.JSONSlice[string](append([]string{}, in.Media...)),
		OrganizerID: organizerID,
	}
	if err := s.events.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}
	return event, nil
}

func (s *Events) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := s.events.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound(eventNotFound)
		}
		return nil, fmt.Errorf("loading event: %w", err)
	}
	return event, nil
}

func (s *Events) List(ctx context.Context, q ListQuery) (*EventPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}

	filter := store.EventFilter{
		Offset: (q.Page - 1) * q.Limit,
		Limit:  q.Limit,
	}
	if q.Type != "" {
		eventType, ok := models.ParseEventType(q.Type)
		if !ok {
			return nil, newError(ErrInvalid, "Event type must be physical or virtual.", nil)
		}
		filter.Type = eventType
	}
	if q.Upcoming {
		now := s.now()
		filter.After = &now
	}

	events, total, err := s.events.ListEvents(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return &EventPage{Events: events, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

// Update applies patch to event, which the caller has already loaded and
// authorized. Only patched fields are written, so a meeting link or media
// added since event was read are kept. Switching to physical drops the
// meeting link.
func (s *Events) Update(ctx context.Context, event *models.Event, patch EventPatch) (*models.Event, error) {
	var update store.EventUpdate
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, newError(ErrInvalid, "Title cannot be empty.", nil)
		}
		update.Title = &title
	}
	if patch.Description != nil {
		if strings.TrimSpace(*patch.Description) == "" {
			return nil, newError(ErrInvalid, "Description cannot be empty.", nil)
		}
		update.Description = patch.Description
	}
	update.Date = patch.Date
	if patch.Type != nil {
		eventType, ok := models.ParseEventType(*patch.Type)
		if !ok {
			return nil, newError(ErrInvalid, "Event type must be physical or virtual.", nil)
		}
		update.Type = &eventType
		update.ClearZoomLink = eventType != models.EventTypeVirtual
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, newError(ErrInvalid, "Price cannot be negative.", nil)
		}
		update.Price = patch.Price
	}
	update.Venue = patch.Venue
	if patch.Media != nil {
		media := append([]string{}, (*patch.Media)...)
		update.Media = &media
	}

	if err := s.events.UpdateEvent(ctx, event.ID, update); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound(eventNotFound)
		}
		return nil, fmt.Errorf("updating event: %w", err)
	}
	return s.Get(ctx, event.ID)
}

func (s *Events) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.events.DeleteEvent(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound(eventNotFound)
		}
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}

func (s *Events) AddMedia(ctx context.Context, id uuid.UUID, url string) (*models.Event, error) {
	if err := s.events.AppendMedia(ctx, id, url); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound(eventNotFound)
		}
		return nil, fmt.Errorf("adding media: %w", err)
	}
	return s.Get(ctx, id)
}
