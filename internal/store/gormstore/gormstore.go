// Package gormstore persists events and users in PostgreSQL through gorm.
// Attendance lives in the event_attendees join table whose composite primary
// key makes registration an atomic insert-if-absent.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/models"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/store"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&models.User{}, &models.Event{}, &models.EventAttendee{})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) CreateEvent(ctx context.Context, event *models.Event) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return translate(err)
	}
	event.Attendees = []uuid.UUID{}
	return nil
}

func (s *Store) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, translate(err)
	}
	events := []models.Event{event}
	if err := s.attachAttendees(ctx, events); err != nil {
		return nil, err
	}
	return &events[0], nil
}

func (s *Store) ListEvents(ctx context.Context, filter store.EventFilter) ([]models.Event, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Event{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.After != nil {
		query = query.Where("date >= ?", *filter.After)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.Event
	query = query.Order("date ASC").Order("id ASC").Offset(filter.Offset)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, 0, err
	}
	if err := s.attachAttendees(ctx, events); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (s *Store) UpdateEvent(ctx context.Context, id uuid.UUID, update store.EventUpdate) error {
	values := map[string]any{"updated_at": time.Now()}
	if update.Title != nil {
		values["title"] = *update.Title
	}
	if update.Description != nil {
		values["description"] = *update.Description
	}
	if update.Date != nil {
		values["date"] = *update.Date
	}
	if update.Type != nil {
		values["type"] = string(*update.Type)
	}
	if update.Price != nil {
		values["price"] = *update.Price
	}
	if update.Venue != nil {
		values["venue"] = *update.Venue
	}
	if update.Media != nil {
		values["media"] = datatypes.JSONSlice[string](append([]string{}, (*update.Media)...))
	}
	if update.ClearZoomLink {
		values["zoom_link"] = gorm.Expr("NULL")
	}

	result := s.db.WithContext(ctx).Model(&models.Event{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.EventAttendee{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Event{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (s *Store) AddAttendee(ctx context.Context, eventID, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Event{}).Where("id = ?", eventID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return store.ErrNotFound
		}

		row := models.EventAttendee{EventID: eventID, UserID: userID}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return store.ErrAlreadyAttending
		}
		return tx.Model(&models.Event{}).Where("id = ?", eventID).Update("updated_at", time.Now()).Error
	})
}

func (s *Store) SetZoomLink(ctx context.Context, eventID uuid.UUID, link string) error {
	result := s.db.WithContext(ctx).Model(&models.Event{}).Where("id = ?", eventID).Update("zoom_link", link)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) AppendMedia(ctx context.Context, eventID uuid.UUID, url string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", eventID).First(&event).Error
		if err != nil {
			return translate(err)
		}
		event.Media = append(event.Media, url)
		return tx.Model(&event).Update("media", event.Media).Error
	})
}

func (s *Store) EventsBetween(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).
		Where("date >= ? AND date < ?", start, end).
		Order("date ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	if err := s.attachAttendees(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return translate(err)
	}
	user.CreatedEvents, user.JoinedEvents = []uuid.UUID{}, []uuid.UUID{}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	if err := s.attachBackRefs(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	if err := s.attachBackRefs(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	if err := user.EnsureOrganizerID(); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Model(user).
		Select("name", "email", "password", "role", "organizer_id", "updated_at").
		Updates(user)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return store.OrderByIDs(users, ids), nil
}

func (s *Store) attachAttendees(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(events))
	index := make(map[uuid.UUID]int, len(events))
	for i := range events {
		ids[i] = events[i].ID
		index[events[i].ID] = i
		events[i].Attendees = []uuid.UUID{}
	}

	var rows []models.EventAttendee
	err := s.db.WithContext(ctx).
		Where("event_id IN ?", ids).
		Order("created_at ASC").Order("user_id ASC").
		Find(&rows).Error
	if err != nil {
		return fmt.Errorf("loading attendees: %w", err)
	}
	for _, row := range rows {
		i := index[row.EventID]
		events[i].Attendees = append(events[i].Attendees, row.UserID)
	}
	return nil
}

func (s *Store) attachBackRefs(ctx context.Context, user *models.User) error {
	user.CreatedEvents, user.JoinedEvents = []uuid.UUID{}, []uuid.UUID{}
	err := s.db.WithContext(ctx).Model(&models.Event{}).
		Where("organizer_id = ?", user.ID).
		Order("created_at ASC").
		Pluck("id", &user.CreatedEvents).Error
	if err != nil {
		return fmt.Errorf("loading created events: %w", err)
	}
	err = s.db.WithContext(ctx).Model(&models.EventAttendee{}).
		Where("user_id = ?", user.ID).
		Order("created_at ASC").
		Pluck("event_id", &user.JoinedEvents).Error
	if err != nil {
		return fmt.Errorf("loading joined events: %w", err)
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrDuplicate
	}
	return err
}
