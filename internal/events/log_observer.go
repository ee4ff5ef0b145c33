package events

import (
	"context"

	"github.com/sirupsen/logrus"

	"docqa/internal/domain"
	"docqa/internal/llm"
)

const maxLoggedReply = 2000

// LogObserver writes each event as a structured log line. Parse failures are
// logged at warn level with the raw reply so lossy batches can be audited.
type LogObserver struct {
	logger logrus.FieldLogger
}

// NewLogObserver creates a LogObserver. A nil logger uses the standard one.
func NewLogObserver(logger logrus.FieldLogger) *LogObserver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) Observe(_ context.Context, event *domain.ExtractionEvent) error {
	entry := o.logger.WithFields(logrus.Fields{
		"run_id": event.RunID.String(),
		"event":  string(event.Kind),
	})

	switch event.Kind {
	case domain.EventRunStarted, domain.EventRunCompleted:
		entry.WithField("model", event.Model).Infof("extraction: %s (%s)", event.Kind, event.Detail)
	case domain.EventDocumentSkipped:
		entry.WithFields(logrus.Fields{
			"document": event.DocumentIndex,
			"category": event.Category,
		}).Debugf("extraction: skipped document %s", event.ProcessIdentifier)
	case domain.EventBatchAnswered:
		entry.WithFields(logrus.Fields{
			"document": event.DocumentIndex,
			"category": event.Category,
			"batch":    event.BatchIndex,
			"answers":  event.AnswerCount,
		}).Debugf("extraction: batch %d/%d answered %s", event.BatchIndex+1, event.BatchCount, event.Detail)
	case domain.EventDocumentDone:
		entry.WithFields(logrus.Fields{
			"document": event.DocumentIndex,
			"category": event.Category,
			"answers":  event.AnswerCount,
		}).Debugf("extraction: document %s done", event.ProcessIdentifier)
	case domain.EventBatchParseFailed:
		entry.WithFields(logrus.Fields{
			"document":  event.DocumentIndex,
			"category":  event.Category,
			"batch":     event.BatchIndex,
			"labels":    event.Labels,
			"raw_reply": llm.Truncate(event.RawReply, maxLoggedReply),
		}).Warnf("extraction: no answers recovered from batch %d/%d: %s", event.BatchIndex+1, event.BatchCount, event.Detail)
	case domain.EventRunFailed:
		entry.WithField("document", event.DocumentIndex).Errorf("extraction: run failed: %s", event.Detail)
	default:
		entry.Debug("extraction: event")
	}
	return nil
}
