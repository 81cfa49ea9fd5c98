// Package memstore keeps events and users in process memory. It backs the
// "memory" database driver and the test suites.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/models"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/store"
)

type Store struct {
	mu     sync.RWMutex
	events map[uuid.UUID]*models.Event
	users  map[uuid.UUID]*models.User
	now    func() time.Time
}

func New() *Store {
	return &Store{
		events: make(map[uuid.UUID]*models.Event),
		users:  make(map[uuid.UUID]*models.User),
		now:    time.Now,
	}
}

func (s *Store) Ping(ctx context.Context) error  { return nil }
func (s *Store) Close(ctx context.Context) error { return nil }

func (s *Store) CreateEvent(ctx context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if _, exists := s.events[event.ID]; exists {
		return store.ErrDuplicate
	}
	now := s.now()
	event.CreatedAt, event.UpdatedAt = now, now
	if event.Attendees == nil {
		event.Attendees = []uuid.UUID{}
	}
	s.events[event.ID] = cloneEvent(event)
	return nil
}

func (s *Store) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, exists := s.events[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	return cloneEvent(event), nil
}

func (s *Store) ListEvents(ctx context.Context, filter store.EventFilter) ([]models.Event, int64, error) {
	s.mu.RLock()
	matched := make([]models.Event, 0, len(s.events))
	for _, event := range s.events {
		if filter.Type != "" && event.Type != filter.Type {
			continue
		}
		if filter.After != nil && event.Date.Before(*filter.After) {
			continue
		}
		matched = append(matched, *cloneEvent(event))
	}
	s.mu.RUnlock()

	sortByDate(matched)
	total := int64(len(matched))
	if filter.Offset > len(matched) {
		return []models.Event{}, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (s *Store) UpdateEvent(ctx context.Context, id uuid.UUID, update store.EventUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, exists := s.events[id]
	if !exists {
		return store.ErrNotFound
	}
	if update.Title != nil {
		existing.Title = *update.Title
	}
	if update.Description != nil {
		existing.Description = *update.Description
	}
	if update.Date != nil {
		existing.Date = *update.Date
	}
	if update.Type != nil {
		existing.Type = *update.Type
	}
	if update.Price != nil {
		existing.Price = *update.Price
	}
	if update.Venue != nil {
		existing.Venue = *update.Venue
	}
	if update.Media != nil {
		existing.Media = append(datatypes.JSONSlice[string]{}, (*update.Media)...)
	}
	if update.ClearZoomLink {
		existing.ZoomLink = nil
	}
	existing.UpdatedAt = s.now()
	return nil
}

func (s *Store) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.events[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *Store) AddAttendee(ctx context.Context, eventID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, exists := s.events[eventID]
	if !exists {
		return store.ErrNotFound
	}
	if event.HasAttendee(userID) {
		return store.ErrAlreadyAttending
	}
	event.Attendees = append(event.Attendees, userID)
	event.UpdatedAt = s.now()
	return nil
}

func (s *Store) SetZoomLink(ctx context.Context, eventID uuid.UUID, link string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, exists := s.events[eventID]
	if !exists {
		return store.ErrNotFound
	}
	event.ZoomLink = &link
	event.UpdatedAt = s.now()
	return nil
}

func (s *Store) AppendMedia(ctx context.Context, eventID uuid.UUID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, exists := s.events[eventID]
	if !exists {
		return store.ErrNotFound
	}
	event.Media = append(event.Media, url)
	event.UpdatedAt = s.now()
	return nil
}

func (s *Store) EventsBetween(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []models.Event
	for _, event := range s.events {
		if !event.Date.Before(start) && event.Date.Before(end) {
			matched = append(matched, *cloneEvent(event))
		}
	}
	sortByDate(matched)
	return matched, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if s.emailTaken(user.Email, user.ID) {
		return store.ErrDuplicate
	}
	if err := user.EnsureOrganizerID(); err != nil {
		return err
	}
	now := s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	user.CreatedEvents, user.JoinedEvents = []uuid.UUID{}, []uuid.UUID{}
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, exists := s.users[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	return s.withBackRefs(user), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return s.withBackRefs(user), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, exists := s.users[user.ID]
	if !exists {
		return store.ErrNotFound
	}
	if s.emailTaken(user.Email, user.ID) {
		return store.ErrDuplicate
	}
	if existing.OrganizerID != nil {
		user.OrganizerID = cloneString(existing.OrganizerID)
	}
	if err := user.EnsureOrganizerID(); err != nil {
		return err
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = s.now()
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *Store) ListUsers(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if user, exists := s.users[id]; exists {
			users = append(users, *cloneUser(user))
		}
	}
	return store.OrderByIDs(users, ids), nil
}

// must be called with mu held
func (s *Store) emailTaken(email string, self uuid.UUID) bool {
	for id, user := range s.users {
		if id != self && strings.EqualFold(user.Email, email) {
			return true
		}
	}
	return false
}

// must be called with mu held
func (s *Store) withBackRefs(user *models.User) *models.User {
	out := cloneUser(user)
	out.CreatedEvents, out.JoinedEvents = []uuid.UUID{}, []uuid.UUID{}
	events := make([]*models.Event, 0, len(s.events))
	for _, event := range s.events {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].CreatedAt.Before(events[j].CreatedAt) })
	for _, event := range events {
		if event.OrganizerID == user.ID {
			out.CreatedEvents = append(out.CreatedEvents, event.ID)
		}
		if event.HasAttendee(user.ID) {
			out.JoinedEvents = append(out.JoinedEvents, event.ID)
		}
	}
	return out
}

func sortByDate(events []models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date.Equal(events[j].Date) {
			return events[i].ID.String() < events[j].ID.String()
		}
		return events[i].Date.Before(events[j].Date)
	})
}

func cloneEvent(event *models.Event) *models.Event {
	out := *event
	out.Media = append(datatypes.JSONSlice[string]{}, event.Media...)
	out.Attendees = append([]uuid.UUID{}, event.Attendees...)
	out.ZoomLink = cloneString(event.ZoomLink)
	return &out
}

func cloneUser(user *models.User) *models.User {
	out := *user
	out.OrganizerID = cloneString(user.OrganizerID)
	out.CreatedEvents = append([]uuid.UUID{}, user.CreatedEvents...)
	out.JoinedEvents = append([]uuid.UUID{}, user.JoinedEvents...)
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
