package port

import (
	"context"

	"docqa/internal/domain"
)

// ExtractionObserver receives events emitted while an extraction run executes.
// Errors are logged by the caller and never abort a run.
type ExtractionObserver interface {
	Observe(ctx context.Context, event *domain.ExtractionEvent) error
}
