package events

import (
	"context"
	"fmt"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// AuditObserver persists events to the audit trail. Successful batches are
// not stored; they are visible in the results themselves.
type AuditObserver struct {
	repo port.ExtractionEventRepository
}

// NewAuditObserver creates an AuditObserver.
func NewAuditObserver(repo port.ExtractionEventRepository) *AuditObserver {
	return &AuditObserver{repo: repo}
}

func (o *AuditObserver) Observe(ctx context.Context, event *domain.ExtractionEvent) error {
	if event.Kind == domain.EventBatchAnswered {
		return nil
	}
	if err := o.repo.Create(ctx, event); err != nil {
		return fmt.Errorf("auditing %s event: %w", event.Kind, err)
	}
	return nil
}
