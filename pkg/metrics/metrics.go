package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Event outcomes.
const (
	OutcomeForwarded     = "forwarded"
	OutcomeRejected      = "rejected"
	OutcomeUpstreamError = "upstream_error"
	OutcomeInvalid       = "invalid"
)

// Kafka directions and statuses.
const (
	DirectionIn  = "in"
	DirectionOut = "out"

	StatusSuccess = "success"
	StatusError   = "error"
	StatusDLQ     = "dlq"
)

var (
	// Event processing metrics
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capi_events_total",
			Help: "Total number of events processed, by outcome",
		},
		[]string{"outcome"},
	)

	FieldCorrections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capi_field_corrections_total",
			Help: "Total number of fields blanked or substituted during sanitization",
		},
		[]string{"field"},
	)

	// Upstream metrics
	ForwardDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "capi_forward_duration_seconds",
			Help:    "Duration of calls to the ingestion endpoint in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Kafka metrics
	KafkaMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capi_kafka_messages_total",
			Help: "Total number of Kafka messages handled",
		},
		[]string{"direction", "status"},
	)
)

func RecordOutcome(outcome string) {
	EventsTotal.WithLabelValues(outcome).Inc()
}

func RecordCorrection(field string) {
	FieldCorrections.WithLabelValues(field).Inc()
}

func ObserveForward(start time.Time) {
	ForwardDuration.Observe(time.Since(start).Seconds())
}

func RecordKafkaMessage(direction, status string) {
	KafkaMessages.WithLabelValues(direction, status).Inc()
}
