package port

import (
	"context"

	"github.com/google/uuid"

	"docqa/internal/domain"
)

// ExtractionEventRepository defines the contract for the extraction audit trail.
type ExtractionEventRepository interface {
	Create(ctx context.Context, event *domain.ExtractionEvent) error
	ListByRun(ctx context.Context, runID uuid.UUID, offset, limit int) ([]domain.ExtractionEvent, int, error)
}
