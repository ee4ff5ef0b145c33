// Package events fans extraction events out to logs, metrics, the audit
// trail and NATS.
package events

import (
	"context"

	"github.com/sirupsen/logrus"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// Multi forwards every event to each observer in order. A failing observer
// is logged and does not stop the others.
type Multi []port.ExtractionObserver

func (m Multi) Observe(ctx context.Context, event *domain.ExtractionEvent) error {
	for _, obs := range m {
		if obs == nil {
			continue
		}
		if err := obs.Observe(ctx, event); err != nil {
			logrus.Warnf("events.Multi: observer %T failed on %s: %v", obs, event.Kind, err)
		}
	}
	return nil
}
