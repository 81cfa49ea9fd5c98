package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/logging"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/mailer"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/metrics"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/models"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/store"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/ticket"
)

// MailDispatcher hands a message to background delivery and returns at
// once.
type MailDispatcher interface {
	Dispatch(msg mailer.Message)
}

type TicketIssuer interface {
	Issue(eventID, userID uuid.UUID) (*models.Ticket, error)
	Verify(raw string) (*ticket.Payload, error)
}

type Registrar struct {
	store  store.Store
	issuer TicketIssuer
	mail   MailDispatcher
	logger zerolog.Logger
}

func NewRegistrar(s store.Store, issuer TicketIssuer, mail MailDispatcher) *Registrar {
	return &Registrar{
		store:  s,
		issuer: issuer,
		mail:   mail,
		logger: logging.With().Str("component", "registration").Logger(),
	}
}

type Registration struct {
	Event  *models.Event  `json:"event"`
	Ticket *models.Ticket `json:"ticket"`
}

// RegisterAttendee issues the QR ticket, adds userID to the event and
// queues the confirmation email. The ticket exists before the attendee is
// committed, so a failed issuance leaves the user free to retry. The append
// is committed before any email is attempted; mail failures never reach the
// caller.
func (r *Registrar) RegisterAttendee(ctx context.Context, eventID, userID uuid.UUID) (*Registration, error) {
	event, err := r.store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.Registrations.WithLabelValues("not_found").Inc()
			return nil, notFound(eventNotFound)
		}
		metrics.Registrations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("loading event: %w", err)
	}
	if event.HasAttendee(userID) {
		metrics.Registrations.WithLabelValues("duplicate").Inc()
		return nil, ErrAlreadyRegistered
	}

	tkt, err := r.issuer.Issue(eventID, userID)
	if err != nil {
		metrics.Registrations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("issuing ticket: %w", err)
	}

	if err := r.store.AddAttendee(ctx, eventID, userID); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyAttending):
			metrics.Registrations.WithLabelValues("duplicate").Inc()
			return nil, ErrAlreadyRegistered
		case errors.Is(err, store.ErrNotFound):
			metrics.Registrations.WithLabelValues("not_found").Inc()
			return nil, notFound(eventNotFound)
		}
		metrics.Registrations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("adding attendee: %w", err)
	}
	event.Attendees = append(event.Attendees, userID)
	metrics.Registrations.WithLabelValues("registered").Inc()

	user, err := r.store.GetUser(ctx, userID)
	if err != nil {
		r.logger.Warn().Err(err).
			Str("event_id", eventID.String()).
			Str("user_id", userID.String()).
			Msg("Registered attendee profile unavailable, skipping confirmation email")
		return &Registration{Event: event, Ticket: tkt}, nil
	}

	if user.Email != "" {
		r.sendConfirmation(event, user, tkt)
	}
	return &Registration{Event: event, Ticket: tkt}, nil
}

func (r *Registrar) sendConfirmation(event *models.Event, user *models.User, tkt *models.Ticket) {
	confirmation := mailer.Confirmation{
		To:     user.Email,
		Name:   user.Name,
		Title:  event.Title,
		Date:   event.Date,
		Venue:  event.Venue,
		QRCode: tkt.QRCode,
	}
	if event.IsVirtual() && event.ZoomLink != nil {
		confirmation.MeetingLink = *event.ZoomLink
	}
	msg, err := mailer.RegistrationConfirmation(confirmation)
	if err != nil {
		r.logger.Error().Err(err).Str("event_id", event.ID.String()).Msg("Failed to render confirmation email")
		return
	}
	r.mail.Dispatch(msg)
}

// CheckIn verifies a scanned ticket against event and returns the attendee.
func (r *Registrar) CheckIn(ctx context.Context, event *models.Event, qrData string) (*models.User, error) {
	payload, err := r.issuer.Verify(qrData)
	if err != nil {
		return nil, newError(ErrForbidden, "Invalid QR code signature.", err)
	}
	if payload.EventID != event.ID {
		return nil, newError(ErrForbidden, "Ticket was issued for a different event.", nil)
	}
	if !event.HasAttendee(payload.UserID) {
		return nil, notFound("Attendee not registered for this event.")
	}

	user, err := r.store.GetUser(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("User not found.")
		}
		return nil, fmt.Errorf("loading attendee: %w", err)
	}
	return user, nil
}
