// Package store defines the persistence contract shared by the SQL, document
// and in-memory backends.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/models"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("duplicate record")
	ErrAlreadyAttending = errors.New("user already attending event")
)

type EventFilter struct {
	Type   models.EventType
	After  *time.Time
	Offset int
	Limit  int
}

// EventUpdate names the fields to overwrite. Nil fields keep the stored
// value, so links and media written concurrently survive a partial edit.
type EventUpdate struct {
	Title       *string
	Description *string
	Date        *time.Time
	Type        *models.EventType
	Price       *float64
	Venue       *string
	Media       *[]string
	// ClearZoomLink removes the meeting link in the same write.
	ClearZoomLink bool
}

type EventStore interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]models.Event, int64, error)
	// UpdateEvent writes only the fields set in update; attendees are never
	// touched so concurrent registrations are not lost.
	UpdateEvent(ctx context.Context, id uuid.UUID, update EventUpdate) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	// AddAttendee appends atomically. It returns ErrNotFound for a missing
	// event and ErrAlreadyAttending when the user is already present.
	AddAttendee(ctx context.Context, eventID, userID uuid.UUID) error
	SetZoomLink(ctx context.Context, eventID uuid.UUID, link string) error
	AppendMedia(ctx context.Context, eventID uuid.UUID, url string) error
	// EventsBetween returns events dated in [start, end).
	EventsBetween(ctx context.Context, start, end time.Time) ([]models.Event, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	// ListUsers resolves ids in the given order, skipping unknown ids.
	ListUsers(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

type Store interface {
	EventStore
	UserStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// OrderByIDs arranges users to follow ids, dropping ids with no match.
func OrderByIDs(users []models.User, ids []uuid.UUID) []models.User {
	byID := make(map[uuid.UUID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	ordered := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			ordered = append(ordered, u)
		}
	}
	return ordered
}
