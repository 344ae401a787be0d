package metrics

import (
	"github.com/Togather-Foundation/refunds/internal/domain/refunds"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refund validation metrics
var (
	// RequestsValidated counts validated requests by channel, policy and outcome
	RequestsValidated = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_validated_total",
			Help:      "Total number of refund requests validated",
		},
		[]string{"channel", "policy", "outcome"}, // outcome: valid|invalid
	)

	// RegistrationAdjustments counts registered instants by the rule that produced them
	RegistrationAdjustments = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registration_rules_total",
			Help:      "Total number of registered instants by business-hours rule",
		},
		[]string{"rule"},
	)

	// RecordFailures counts records that could not be normalized or validated
	RecordFailures = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_failures_total",
			Help:      "Total number of refund records that failed processing",
		},
		[]string{"kind"}, // kind: malformed_input|configuration_lookup|parse|other
	)

	// BatchDuration records batch processing time in seconds
	BatchDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Refund batch processing time in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	// BatchSize records the number of records per batch
	BatchSize = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of refund records per batch",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)

// Observer records refund batch outcomes into the package collectors.
type Observer struct{}

var _ refunds.Observer = Observer{}

func (Observer) ObserveOutcome(o refunds.Outcome) {
	if o.Err != nil {
		RecordFailures.WithLabelValues(o.ErrorKind).Inc()
		return
	}
	outcome := "invalid"
	if o.Result.Valid {
		outcome = "valid"
	}
	exp := o.Result.Explanation
	RequestsValidated.WithLabelValues(string(exp.Channel), string(exp.Policy), outcome).Inc()
	RegistrationAdjustments.WithLabelValues(string(exp.Rule)).Inc()
}

func (Observer) ObserveBatch(r refunds.BatchReport) {
	BatchDuration.Observe(r.Duration.Seconds())
	BatchSize.Observe(float64(len(r.Outcomes)))
}
