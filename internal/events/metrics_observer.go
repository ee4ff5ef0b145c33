package events

import (
	"context"

	"docqa/internal/domain"
	"docqa/internal/metrics"
)

// MetricsObserver counts events in Prometheus collectors.
type MetricsObserver struct {
	m *metrics.Metrics
}

// NewMetricsObserver creates a MetricsObserver.
func NewMetricsObserver(m *metrics.Metrics) *MetricsObserver {
	return &MetricsObserver{m: m}
}

func (o *MetricsObserver) Observe(_ context.Context, event *domain.ExtractionEvent) error {
	switch event.Kind {
	case domain.EventRunStarted:
		o.m.Runs.WithLabelValues("started").Inc()
	case domain.EventRunCompleted:
		o.m.Runs.WithLabelValues("completed").Inc()
	case domain.EventRunFailed:
		o.m.Runs.WithLabelValues("failed").Inc()
	case domain.EventDocumentSkipped:
		o.m.Documents.WithLabelValues("skipped").Inc()
	case domain.EventBatchAnswered:
		o.m.Batches.WithLabelValues("answered").Inc()
		o.m.BatchAnswers.Observe(float64(event.AnswerCount))
	case domain.EventBatchParseFailed:
		o.m.Batches.WithLabelValues("parse_failed").Inc()
	case domain.EventDocumentDone:
		o.m.Documents.WithLabelValues("processed").Inc()
	}
	return nil
}
