package models

import "github.com/google/uuid"

// Ticket is handed out at registration time and never persisted.
type Ticket struct {
	EventID uuid.UUID `json:"event_id"`
	UserID  uuid.UUID `json:"user_id"`
	Payload string    `json:"payload"`
	QRCode  string    `json:"qr_code"`
}
