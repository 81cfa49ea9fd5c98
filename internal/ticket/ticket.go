// Package ticket issues QR-code tickets and verifies them at check-in.
package ticket

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/models"
)

const qrSize = 256

var ErrInvalidTicket = errors.New("invalid ticket")

// Payload is the JSON encoded into the QR image.
type Payload struct {
	EventID   uuid.UUID `json:"eventId"`
	UserID    uuid.UUID `json:"userId"`
	Signature string    `json:"sig,omitempty"`
}

type Issuer struct {
	secret []byte
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret)}
}

func (i *Issuer) Issue(eventID, userID uuid.UUID) (*models.Ticket, error) {
	payload := Payload{
		EventID:   eventID,
		UserID:    userID,
		Signature: i.sign(eventID, userID),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding ticket payload: %w", err)
	}

	png, err := qrcode.Encode(string(data), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("rendering ticket qr code: %w", err)
	}

	return &models.Ticket{
		EventID: eventID,
		UserID:  userID,
		Payload: string(data),
		QRCode:  "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}

// Verify parses scanned QR text and checks its signature.
func (i *Issuer) Verify(raw string) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	if payload.EventID == uuid.Nil || payload.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing identifiers", ErrInvalidTicket)
	}

	got, err := hex.DecodeString(payload.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed signature", ErrInvalidTicket)
	}
	want, _ := hex.DecodeString(i.sign(payload.EventID, payload.UserID))
	if !hmac.Equal(got, want) {
		return nil, fmt.Errorf("%w: signature mismatch", ErrInvalidTicket)
	}
	return &payload, nil
}

func (i *Issuer) sign(eventID, userID uuid.UUID) string {
	h := hmac.New(sha256.New, i.secret)
	h.Write([]byte(eventID.String() + ":" + userID.String()))
	return hex.EncodeToString(h.Sum(nil))
}
