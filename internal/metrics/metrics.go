// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "docqa"

// Metrics groups every collector the service updates.
type Metrics struct {
	Batches      *prometheus.CounterVec
	Documents    *prometheus.CounterVec
	Runs         *prometheus.CounterVec
	BatchAnswers prometheus.Histogram

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Question batches sent to the model, by outcome (answered, parse_failed).",
		}, []string{"outcome"}),
		Documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents seen by extraction runs, by outcome (processed, skipped).",
		}, []string{"outcome"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Extraction runs, by outcome (started, completed, failed).",
		}, []string{"outcome"}),
		BatchAnswers: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_answers",
			Help:      "Answers merged from one successfully parsed batch reply.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(m.Batches, m.Documents, m.Runs, m.BatchAnswers, m.HTTPRequests, m.HTTPDuration)
	return m
}
