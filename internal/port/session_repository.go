package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"docqa/internal/session"
)

// SessionRepository defines the contract for session state storage.
type SessionRepository interface {
	Create(ctx context.Context, state *session.State) error
	GetByID(ctx context.Context, id uuid.UUID) (*session.State, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteIdleSince(ctx context.Context, cutoff time.Time) (int, error)
	Count(ctx context.Context) (int, error)
}
