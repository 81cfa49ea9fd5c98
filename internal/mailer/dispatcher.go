package mailer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/logging"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/metrics"
)

// Dispatcher sends mail off the request path. Delivery failures end up in
// the log and the metrics, never with the caller.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	logger  zerolog.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(sender Sender, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		sender:  sender,
		timeout: timeout,
		logger:  logging.With().Str("component", "mailer").Logger(),
	}
}

// Dispatch returns immediately; the send runs in its own goroutine with its
// own deadline.
func (d *Dispatcher) Dispatch(msg Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		_ = d.Send(ctx, msg)
	}()
}

// Send delivers synchronously under the dispatcher's timeout and records
// the outcome. Panics in the sender are turned into errors.
func (d *Dispatcher) Send(ctx context.Context, msg Message) (err error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mail sender panic: %v", r)
		}
		if err != nil {
			metrics.EmailsSent.WithLabelValues(string(msg.Kind), "failed").Inc()
			d.logger.Error().Err(err).
				Str("kind", string(msg.Kind)).
				Str("to", msg.To).
				Msg("Failed to deliver email")
			return
		}
		metrics.EmailsSent.WithLabelValues(string(msg.Kind), "sent").Inc()
		d.logger.Debug().Str("kind", string(msg.Kind)).Str("to", msg.To).Msg("Email delivered")
	}()

	return d.sender.Send(ctx, msg)
}

// Wait blocks until every dispatched message has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
