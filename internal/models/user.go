package models

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const organizerIDLength = 10

const organizerIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

type User struct {
	ID            uuid.UUID   `gorm:"type:uuid;primary_key" bson:"_id" json:"id"`
	OrganizerID   *string     `gorm:"uniqueIndex;size:10" bson:"organizer_id,omitempty" json:"organizer_id,omitempty"`
	Name          string      `gorm:"not null" bson:"name" json:"name"`
	Email         string      `gorm:"uniqueIndex;not null" bson:"email" json:"email"`
	Password      string      `gorm:"not null" bson:"password" json:"-"`
	Role          Role        `gorm:"not null;default:attendee" bson:"role" json:"role"`
	CreatedEvents []uuid.UUID `gorm:"-" bson:"created_events" json:"created_events"`
	JoinedEvents  []uuid.UUID `gorm:"-" bson:"joined_events" json:"joined_events"`
	CreatedAt     time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `bson:"updated_at" json:"updated_at"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return
}

func (user *User) BeforeSave(tx *gorm.DB) (err error) {
	return user.EnsureOrganizerID()
}

// EnsureOrganizerID assigns the public organizer token the first time an
// organizer account is saved. An assigned token is never replaced.
func (user *User) EnsureOrganizerID() error {
	if user.Role != RoleOrganizer || user.OrganizerID != nil {
		return nil
	}
	id, err := NewOrganizerID()
	if err != nil {
		return err
	}
	user.OrganizerID = &id
	return nil
}

func NewOrganizerID() (string, error) {
	max := big.NewInt(int64(len(organizerIDAlphabet)))
	buf := make([]byte, organizerIDLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = organizerIDAlphabet[n.Int64()]
	}
	return string(buf), nil
}
