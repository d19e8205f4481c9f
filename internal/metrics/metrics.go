package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Webhook outcomes.
const (
	OutcomeAccepted  = "accepted"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
	OutcomeInvalid   = "invalid"
	OutcomeNotFound  = "tenant_not_found"
	OutcomeError     = "error"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatingest_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatingest_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// Ingestion metrics
	WebhookRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatingest_webhook_requests_total",
			Help: "Webhook deliveries by outcome",
		},
		[]string{"outcome"},
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chatingest_ingest_duration_seconds",
			Help:    "Time from a validated event to its acknowledgment",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatingest_classifications_total",
			Help: "Priorities assigned to inbound messages",
		},
		[]string{"priority"},
	)

	ClassifierDegradedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatingest_classifier_degraded_total",
			Help: "Classifications replaced by the default priority after a classifier failure",
		},
	)

	// Store metrics
	StoreConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatingest_store_conflicts_total",
			Help: "Uniqueness conflicts retried by the resolvers",
		},
		[]string{"entity"}, // "contact" or "conversation"
	)

	PublishFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatingest_publish_failures_total",
			Help: "message.ingested notifications that could not be published",
		},
	)
)
