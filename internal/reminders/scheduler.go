// Package reminders runs the daily job that emails every attendee of the
// next day's events.
//
// Delivery is best-effort and at most once per tick. No record of sent
// reminders is kept, so a tick repeated after a restart can send again.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/logging"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/mailer"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/metrics"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/models"
)

// ReminderHour is the local hour at which the daily tick fires.
const ReminderHour = 9

const defaultConcurrency = 4

type Source interface {
	EventsBetween(ctx context.Context, start, end time.Time) ([]models.Event, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type Config struct {
	Location    *time.Location
	Concurrency int
	// SendTimeout bounds each individual email.
	SendTimeout time.Duration
}

type Scheduler struct {
	source Source
	sender mailer.Sender
	cfg    Config
	logger zerolog.Logger
	now    func() time.Time
}

type TickReport struct {
	Events  int
	Sent    int
	Failed  int
	Skipped int
}

func NewScheduler(source Source, sender mailer.Sender, cfg Config) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	return &Scheduler{
		source: source,
		sender: sender,
		cfg:    cfg,
		logger: logging.With().Str("component", "reminders").Logger(),
		now:    time.Now,
	}
}

// Window returns [start of tomorrow, start of tomorrow + 24h) in loc.
func Window(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	return start, start.Add(24 * time.Hour)
}

// NextRun returns the first ReminderHour:00 in loc strictly after now.
func NextRun(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	run := time.Date(local.Year(), local.Month(), local.Day(), ReminderHour, 0, 0, 0, loc)
	if !run.After(local) {
		run = time.Date(local.Year(), local.Month(), local.Day()+1, ReminderHour, 0, 0, 0, loc)
	}
	return run
}

// Serve sleeps until the next run, ticks, and repeats until ctx is done.
// Ticks missed while the process was down are not replayed.
func (s *Scheduler) Serve(ctx context.Context) error {
	for {
		next := NextRun(s.now(), s.cfg.Location)
		s.logger.Info().Time("next_run", next).Msg("Reminder tick scheduled")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		report := s.Tick(ctx, s.now())
		s.logger.Info().
			Int("events", report.Events).
			Int("sent", report.Sent).
			Int("failed", report.Failed).
			Int("skipped", report.Skipped).
			Msg("Reminder tick finished")
	}
}

func (s *Scheduler) String() string { return "reminder-scheduler" }

// Tick sends reminders for every event in tomorrow's window. One failing
// recipient or event never stops the others.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) TickReport {
	defer metrics.ReminderTicks.Inc()

	start, end := Window(now, s.cfg.Location)
	events, err := s.source.EventsBetween(ctx, start, end)
	if err != nil {
		s.logger.Error().Err(err).Time("from", start).Time("to", end).Msg("Failed to load events for reminders")
		return TickReport{}
	}

	var counts tickCounts
	for i := range events {
		s.remindEvent(ctx, &events[i], &counts)
	}
	return TickReport{
		Events:  len(events),
		Sent:    int(counts.sent.Load()),
		Failed:  int(counts.failed.Load()),
		Skipped: int(counts.skipped.Load()),
	}
}

type tickCounts struct {
	sent, failed, skipped atomic.Int64
}

func (s *Scheduler) remindEvent(ctx context.Context, event *models.Event, counts *tickCounts) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("event_id", event.ID.String()).
				Interface("panic", r).
				Msg("Reminder processing panicked")
		}
	}()

	sem := make(chan struct{}, s.cfg.Concurrency)
	var wg sync.WaitGroup
	seen := make(map[uuid.UUID]struct{}, len(event.Attendees))
	for _, attendeeID := range event.Attendees {
		if _, dup := seen[attendeeID]; dup {
			continue
		}
		seen[attendeeID] = struct{}{}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return
		}
		wg.Add(1)
		go func(userID uuid.UUID) {
			defer wg.Done()
			defer func() { <-sem }()
			s.remindAttendee(ctx, event, userID, counts)
		}(attendeeID)
	}
	wg.Wait()
}

func (s *Scheduler) remindAttendee(ctx context.Context, event *models.Event, userID uuid.UUID, counts *tickCounts) {
	err := s.sendReminder(ctx, event, userID)
	switch {
	case errors.Is(err, errNoEmail):
		counts.skipped.Add(1)
		metrics.Reminders.WithLabelValues("skipped").Inc()
	case err != nil:
		counts.failed.Add(1)
		metrics.Reminders.WithLabelValues("failed").Inc()
		s.logger.Warn().Err(err).
			Str("event_id", event.ID.String()).
			Str("user_id", userID.String()).
			Msg("Failed to send reminder")
	default:
		counts.sent.Add(1)
		metrics.Reminders.WithLabelValues("sent").Inc()
	}
}

var errNoEmail = errors.New("attendee has no email")

func (s *Scheduler) sendReminder(ctx context.Context, event *models.Event, userID uuid.UUID) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reminder panic: %v", r)
		}
	}()

	user, err := s.source.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading attendee: %w", err)
	}
	if user.Email == "" {
		return errNoEmail
	}

	reminder := mailer.Reminder{
		To:    user.Email,
		Name:  user.Name,
		Title: event.Title,
		Date:  event.Date.In(s.cfg.Location),
	}
	if event.IsVirtual() && event.ZoomLink != nil {
		reminder.MeetingLink = *event.ZoomLink
	}
	msg, err := mailer.ReminderMessage(reminder)
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()
	return s.sender.Send(sendCtx, msg)
}
