// Package mongostore keeps events and users as documents in two MongoDB
// collections. User back-references are denormalized into the user document
// and maintained with $addToSet/$pull next to the event writes.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/logging"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/models"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/store"
)

const (
	eventsCollection = "events"
	usersCollection  = "users"
)

type Store struct {
	client *mongo.Client
	events *mongo.Collection
	users  *mongo.Collection
	now    func() time.Time
}

// Connect dials uri, pings it and ensures the indexes the store relies on.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client: client,
		events: db.Collection(eventsCollection),
		users:  db.Collection(usersCollection),
		now:    time.Now,
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "organizer_id", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("creating user indexes: %w", err)
	}
	_, err = s.events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "organizer_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("creating event indexes: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	now := s.now().UTC()
	event.CreatedAt, event.UpdatedAt = now, now
	if event.Attendees == nil {
		event.Attendees = []uuid.UUID{}
	}
	if event.Media == nil {
		event.Media = []string{}
	}
	if _, err := s.events.InsertOne(ctx, event); err != nil {
		return translate(err)
	}

	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": event.OrganizerID},
		bson.M{"$addToSet": bson.M{"created_events": event.ID}})
	if err != nil {
		logging.Warn().Err(err).Str("event_id", event.ID.String()).Msg("Failed to record created event on organizer")
	}
	return nil
}

func (s *Store) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := s.events.FindOne(ctx, bson.M{"_id": id}).Decode(&event); err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

func (s *Store) ListEvents(ctx context.Context, filter store.EventFilter) ([]models.Event, int64, error) {
	query := bson.M{}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.After != nil {
		query["date"] = bson.M{"$gte": *filter.After}
	}

	total, err := s.events.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(filter.Offset))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	events, err := s.findEvents(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (s *Store) UpdateEvent(ctx context.Context, id uuid.UUID, patch store.EventUpdate) error {
	set := bson.M{"updated_at": s.now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Date != nil {
		set["date"] = *patch.Date
	}
	if patch.Type != nil {
		set["type"] = *patch.Type
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Venue != nil {
		set["venue"] = *patch.Venue
	}
	if patch.Media != nil {
		set["media"] = append([]string{}, (*patch.Media)...)
	}
	update := bson.M{"$set": set}
	if patch.ClearZoomLink {
		update["$unset"] = bson.M{"zoom_link": ""}
	}

	result, err := s.events.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	var deleted models.Event
	if err := s.events.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted); err != nil {
		return translate(err)
	}

	_, err := s.users.UpdateMany(ctx,
		bson.M{"$or": bson.A{bson.M{"created_events": id}, bson.M{"joined_events": id}}},
		bson.M{"$pull": bson.M{"created_events": id, "joined_events": id}})
	if err != nil {
		logging.Warn().Err(err).Str("event_id", id.String()).Msg("Failed to clear event back-references")
	}
	return nil
}

func (s *Store) AddAttendee(ctx context.Context, eventID, userID uuid.UUID) error {
	result, err := s.events.UpdateOne(ctx,
		bson.M{"_id": eventID, "attendees": bson.M{"$ne": userID}},
		bson.M{
			"$push": bson.M{"attendees": userID},
			"$set":  bson.M{"updated_at": s.now().UTC()},
		})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		count, err := s.events.CountDocuments(ctx, bson.M{"_id": eventID})
		if err != nil {
			return err
		}
		if count == 0 {
			return store.ErrNotFound
		}
		return store.ErrAlreadyAttending
	}

	_, err = s.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"joined_events": eventID}})
	if err != nil {
		logging.Warn().Err(err).
			Str("event_id", eventID.String()).
			Str("user_id", userID.String()).
			Msg("Failed to record joined event on user")
	}
	return nil
}

func (s *Store) SetZoomLink(ctx context.Context, eventID uuid.UUID, link string) error {
	result, err := s.events.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{"$set": bson.M{"zoom_link": link, "updated_at": s.now().UTC()}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) AppendMedia(ctx context.Context, eventID uuid.UUID, url string) error {
	result, err := s.events.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{
			"$push": bson.M{"media": url},
			"$set":  bson.M{"updated_at": s.now().UTC()},
		})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) EventsBetween(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	return s.findEvents(ctx,
		bson.M{"date": bson.M{"$gte": start, "$lt": end}},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if err := user.EnsureOrganizerID(); err != nil {
		return err
	}
	now := s.now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	user.CreatedEvents, user.JoinedEvents = []uuid.UUID{}, []uuid.UUID{}
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return translate(err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	if err := user.EnsureOrganizerID(); err != nil {
		return err
	}
	user.UpdatedAt = s.now().UTC()
	set := bson.M{
		"name":       user.Name,
		"email":      user.Email,
		"password":   user.Password,
		"role":       user.Role,
		"updated_at": user.UpdatedAt,
	}
	filter := bson.M{"_id": user.ID}
	if user.OrganizerID != nil {
		set["organizer_id"] = *user.OrganizerID
	}

	result, err := s.users.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	cursor, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return store.OrderByIDs(users, ids), nil
}

func (s *Store) findEvents(ctx context.Context, filter any, opts *options.FindOptions) ([]models.Event, error) {
	cursor, err := s.events.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	events := []models.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err)
	}
	if user.CreatedEvents == nil {
		user.CreatedEvents = []uuid.UUID{}
	}
	if user.JoinedEvents == nil {
		user.JoinedEvents = []uuid.UUID{}
	}
	return &user, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrDuplicate
	}
	return err
}
