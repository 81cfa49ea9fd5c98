package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/models"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/store"
)

func newEvent(t *testing.T, s *Store, organizer uuid.UUID, date time.Time, eventType models.EventType) *models.Event {
	t.Helper()
	event := &models.Event{
		Title:       "Go Meetup",
		Description: "Talks",
		Date:        date,
		Type:        eventType,
		OrganizerID: organizer,
	}
	if err := s.CreateEvent(context.Background(), event); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	return event
}

func TestAddAttendeeConcurrentSingleWinner(t *testing.T) {
	s := New()
	event := newEvent(t, s, uuid.New(), time.Now(), models.EventTypePhysical)
	user := uuid.New()

	const callers = 50
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.AddAttendee(context.Background(), event.ID, user)
		}()
	}
	wg.Wait()
	close(results)

	var ok, dup int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, store.ErrAlreadyAttending):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != callers-1 {
		t.Fatalf("ok=%d dup=%d, want 1 and %d", ok, dup, callers-1)
	}

	got, err := s.GetEvent(context.Background(), event.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Attendees) != 1 {
		t.Fatalf("attendees = %v, want exactly one", got.Attendees)
	}
}

func TestAddAttendeeDistinctUsersAllRecorded(t *testing.T) {
	s := New()
	event := newEvent(t, s, uuid.New(), time.Now(), models.EventTypePhysical)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.AddAttendee(context.Background(), event.ID, uuid.New()); err != nil {
				t.Errorf("AddAttendee: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := s.GetEvent(context.Background(), event.ID)
	if len(got.Attendees) != 20 {
		t.Fatalf("attendees = %d, want 20", len(got.Attendees))
	}
}

func TestAddAttendeeMissingEvent(t *testing.T) {
	s := New()
	err := s.AddAttendee(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestReadsAreCopies(t *testing.T) {
	s := New()
	event := newEvent(t, s, uuid.New(), time.Now(), models.EventTypePhysical)

	got, _ := s.GetEvent(context.Background(), event.ID)
	got.Attendees = append(got.Attendees, uuid.New())
	got.Title = "changed"

	again, _ := s.GetEvent(context.Background(), event.ID)
	if len(again.Attendees) != 0 || again.Title != "Go Meetup" {
		t.Fatalf("stored event mutated through a read: %+v", again)
	}
}

func TestUpdateEventKeepsAttendees(t *testing.T) {
	s := New()
	event := newEvent(t, s, uuid.New(), time.Now(), models.EventTypePhysical)
	user := uuid.New()

	if err := s.AddAttendee(context.Background(), event.ID, user); err != nil {
		t.Fatal(err)
	}
	title := "Renamed"
	if err := s.UpdateEvent(context.Background(), event.ID, store.EventUpdate{Title: &title}); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetEvent(context.Background(), event.ID)
	if got.Title != "Renamed" || !got.HasAttendee(user) {
		t.Fatalf("update lost data: %+v", got)
	}
}

func TestUpdateEventWritesOnlyGivenFields(t *testing.T) {
	s := New()
	ctx := context.Background()
	event := newEvent(t, s, uuid.New(), time.Now(), models.EventTypeVirtual)
	if err := s.SetZoomLink(ctx, event.ID, "https://zoom.us/j/1"); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendMedia(ctx, event.ID, "/uploads/event_media/a.png"); err != nil {
		t.Fatal(err)
	}

	venue := "Hall B"
	if err := s.UpdateEvent(ctx, event.ID, store.EventUpdate{Venue: &venue}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetEvent(ctx, event.ID)
	if got.Venue != "Hall B" || got.ZoomLink == nil || len(got.Media) != 1 || got.Title != event.Title {
		t.Fatalf("partial update = %+v", got)
	}

	if err := s.UpdateEvent(ctx, event.ID, store.EventUpdate{ClearZoomLink: true}); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetEvent(ctx, event.ID)
	if got.ZoomLink != nil {
		t.Fatalf("zoom link = %q, want cleared", *got.ZoomLink)
	}

	if err := s.UpdateEvent(ctx, uuid.New(), store.EventUpdate{Venue: &venue}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing event err = %v", err)
	}
}

func TestListEventsFilterAndPaging(t *testing.T) {
	s := New()
	base := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	organizer := uuid.New()
	for i := 0; i < 5; i++ {
		newEvent(t, s, organizer, base.Add(time.Duration(i)*time.Hour), models.EventTypePhysical)
	}
	newEvent(t, s, organizer, base.Add(-time.Hour), models.EventTypeVirtual)

	events, total, err := s.ListEvents(context.Background(), store.EventFilter{Type: models.EventTypePhysical, Offset: 2, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || len(events) != 2 {
		t.Fatalf("total=%d len=%d, want 5 and 2", total, len(events))
	}
	if !events[0].Date.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("first date = %v, want sorted by date", events[0].Date)
	}

	after := base.Add(3 * time.Hour)
	_, total, _ = s.ListEvents(context.Background(), store.EventFilter{After: &after})
	if total != 2 {
		t.Errorf("upcoming total = %d, want 2", total)
	}

	events, _, _ = s.ListEvents(context.Background(), store.EventFilter{Offset: 100, Limit: 10})
	if len(events) != 0 {
		t.Errorf("page past end returned %d events", len(events))
	}
}

func TestEventsBetweenHalfOpen(t *testing.T) {
	s := New()
	start := time.Date(2030, 3, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	inside := newEvent(t, s, uuid.New(), start, models.EventTypePhysical)
	newEvent(t, s, uuid.New(), end, models.EventTypePhysical)
	newEvent(t, s, uuid.New(), start.Add(-time.Second), models.EventTypePhysical)

	events, err := s.EventsBetween(context.Background(), start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].ID != inside.ID {
		t.Fatalf("events = %+v, want only the event at window start", events)
	}
}

func TestUserEmailUniqueCaseInsensitive(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.CreateUser(ctx, &models.User{Name: "A", Email: "a@example.com", Role: models.RoleAttendee}); err != nil {
		t.Fatal(err)
	}
	err := s.CreateUser(ctx, &models.User{Name: "B", Email: "A@Example.com", Role: models.RoleAttendee})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}

	found, err := s.GetUserByEmail(ctx, "A@EXAMPLE.COM")
	if err != nil || found.Name != "A" {
		t.Fatalf("GetUserByEmail = %+v, %v", found, err)
	}
}

func TestUserBackReferences(t *testing.T) {
	s := New()
	ctx := context.Background()
	organizer := &models.User{Name: "Org", Email: "org@example.com", Role: models.RoleOrganizer}
	attendee := &models.User{Name: "Att", Email: "att@example.com", Role: models.RoleAttendee}
	for _, u := range []*models.User{organizer, attendee} {
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	if organizer.OrganizerID == nil {
		t.Fatal("organizer id not assigned on create")
	}

	event := newEvent(t, s, organizer.ID, time.Now(), models.EventTypePhysical)
	if err := s.AddAttendee(ctx, event.ID, attendee.ID); err != nil {
		t.Fatal(err)
	}

	org, _ := s.GetUser(ctx, organizer.ID)
	att, _ := s.GetUser(ctx, attendee.ID)
	if len(org.CreatedEvents) != 1 || org.CreatedEvents[0] != event.ID {
		t.Errorf("created events = %v", org.CreatedEvents)
	}
	if len(att.JoinedEvents) != 1 || att.JoinedEvents[0] != event.ID {
		t.Errorf("joined events = %v", att.JoinedEvents)
	}

	if err := s.DeleteEvent(ctx, event.ID); err != nil {
		t.Fatal(err)
	}
	att, _ = s.GetUser(ctx, attendee.ID)
	if len(att.JoinedEvents) != 0 {
		t.Errorf("joined events after delete = %v", att.JoinedEvents)
	}
}

func TestUpdateUserKeepsOrganizerID(t *testing.T) {
	s := New()
	ctx := context.Background()
	user := &models.User{Name: "U", Email: "u@example.com", Role: models.RoleOrganizer}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatal(err)
	}
	original := *user.OrganizerID

	update, _ := s.GetUser(ctx, user.ID)
	update.OrganizerID = nil
	update.Name = "Renamed"
	if err := s.UpdateUser(ctx, update); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetUser(ctx, user.ID)
	if got.OrganizerID == nil || *got.OrganizerID != original {
		t.Fatalf("organizer id changed: %v, want %s", got.OrganizerID, original)
	}
}

func TestListUsersPreservesOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	var ids []uuid.UUID
	for _, email := range []string{"c@example.com", "a@example.com", "b@example.com"} {
		u := &models.User{Name: email, Email: email, Role: models.RoleAttendee}
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, u.ID)
	}
	ids = append(ids, uuid.New())

	users, err := s.ListUsers(ctx, ids)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 3 {
		t.Fatalf("len = %d, want 3", len(users))
	}
	for i, u := range users {
		if u.ID != ids[i] {
			t.Errorf("users[%d] = %s, want %s", i, u.ID, ids[i])
		}
	}
}
