package models

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EventType string

const (
	EventTypePhysical EventType = "physical"
	EventTypeVirtual  EventType = "virtual"
)

func ParseEventType(s string) (EventType, bool) {
	switch EventType(s) {
	case "":
		return EventTypePhysical, true
	case EventTypePhysical, EventTypeVirtual:
		return EventType(s), true
	}
	return "", false
}

type Event struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primary_key" bson:"_id" json:"id"`
	Title       string                      `gorm:"not null" bson:"title" json:"title"`
	Description string                      `gorm:"not null" bson:"description" json:"description"`
	Date        time.Time                   `gorm:"not null;index" bson:"date" json:"date"`
	Type        EventType                   `gorm:"not null;default:physical" bson:"type" json:"type"`
	Price       float64                     `gorm:"not null;default:0" bson:"price" json:"price"`
	Venue       string                      `bson:"venue,omitempty" json:"venue,omitempty"`
	Media       datatypes.JSONSlice[string] `bson:"media" json:"media"`
	ZoomLink    *string                     `bson:"zoom_link,omitempty" json:"zoom_link,omitempty"`
	OrganizerID uuid.UUID                   `gorm:"type:uuid;not null;index" bson:"organizer_id" json:"organizer_id"`
	Attendees   []uuid.UUID                 `gorm:"-" bson:"attendees" json:"attendees"`
	CreatedAt   time.Time                   `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time                   `bson:"updated_at" json:"updated_at"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}

// IsFree reports whether registration bypasses payment.
func (event *Event) IsFree() bool {
	return event.Price <= 0
}

func (event *Event) IsVirtual() bool {
	return event.Type == EventTypeVirtual
}

func (event *Event) HasAttendee(userID uuid.UUID) bool {
	for _, id := range event.Attendees {
		if id == userID {
			return true
		}
	}
	return false
}

// MarshalJSON hides the meeting link of non-virtual events.
func (event Event) MarshalJSON() ([]byte, error) {
	type plain Event
	out := plain(event)
	if out.Type != EventTypeVirtual {
		out.ZoomLink = nil
	}
	if out.Media == nil {
		out.Media = datatypes.JSONSlice[string]{}
	}
	if out.Attendees == nil {
		out.Attendees = []uuid.UUID{}
	}
	return json.Marshal(out)
}

// EventAttendee is the SQL join row behind Event.Attendees.
type EventAttendee struct {
	EventID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"not null;index"`
}
