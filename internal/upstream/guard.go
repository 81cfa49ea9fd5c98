// Package upstream wraps calls to third-party HTTP APIs in a circuit breaker
// and a per-call timeout. There is no retry: a failed call is reported once.
package upstream

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/logging"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/metrics"
)

// ErrUnavailable is returned without calling out while the breaker is open.
var ErrUnavailable = errors.New("upstream temporarily unavailable")

type Guard struct {
	name    string
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker[string]
}

// NewGuard opens the breaker after 5 consecutive failures and probes again
// after 30 seconds.
func NewGuard(name string, timeout time.Duration) *Guard {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("upstream", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
	return &Guard{name: name, timeout: timeout, cb: cb}
}

func (g *Guard) Name() string { return g.name }

// Do runs fn under the breaker with the guard's timeout applied to ctx.
func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	result, err := g.cb.Execute(func() (string, error) {
		return fn(ctx)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.UpstreamCalls.WithLabelValues(g.name, "rejected").Inc()
		return "", ErrUnavailable
	case err != nil:
		metrics.UpstreamCalls.WithLabelValues(g.name, "failure").Inc()
		return "", err
	}
	metrics.UpstreamCalls.WithLabelValues(g.name, "success").Inc()
	return result, nil
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
