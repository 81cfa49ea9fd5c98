package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventhub_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventhub_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// result: registered, duplicate, not_found, error
	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventhub_registrations_total",
			Help: "Event registration attempts by outcome",
		},
		[]string{"result"},
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventhub_emails_total",
			Help: "Outbound emails by kind and outcome",
		},
		[]string{"kind", "result"},
	)

	// result: sent, failed, skipped
	Reminders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventhub_reminders_total",
			Help: "Reminder emails handled by the daily scheduler",
		},
		[]string{"result"},
	)

	ReminderTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventhub_reminder_ticks_total",
			Help: "Completed reminder scheduler runs",
		},
	)

	UpstreamCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventhub_upstream_calls_total",
			Help: "Calls to payment and meeting providers by outcome",
		},
		[]string{"upstream", "result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eventhub_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"upstream"},
	)
)
