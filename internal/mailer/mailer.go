// Package mailer renders and delivers transactional email: registration
// confirmations with the QR ticket and day-before reminders.
package mailer

import "context"

type Kind string

const (
	KindConfirmation Kind = "confirmation"
	KindReminder     Kind = "reminder"
)

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
	Kind    Kind
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a plain function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }
