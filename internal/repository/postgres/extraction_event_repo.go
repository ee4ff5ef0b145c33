package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"docqa/internal/domain"
	"docqa/internal/port"
)

type extractionEventRepo struct {
	db *sqlx.DB
}

// NewExtractionEventRepo creates a new PostgreSQL-backed ExtractionEventRepository.
func NewExtractionEventRepo(db *sqlx.DB) port.ExtractionEventRepository {
	return &extractionEventRepo{db: db}
}

func (r *extractionEventRepo) Create(ctx context.Context, event *domain.ExtractionEvent) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO extraction_events (id, run_id, kind, document_index, process_identifier, category,
			batch_index, batch_count, answer_count, raw_reply, detail, model, occurred_at)
		 VALUES (:id, :run_id, :kind, :document_index, :process_identifier, :category,
			:batch_index, :batch_count, :answer_count, :raw_reply, :detail, :model, :occurred_at)`,
		event)
	if err != nil {
		return fmt.Errorf("extractionEventRepo.Create: %w", err)
	}
	return nil
}

func (r *extractionEventRepo) ListByRun(ctx context.Context, runID uuid.UUID, offset, limit int) ([]domain.ExtractionEvent, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM extraction_events WHERE run_id = $1`, runID)
	if err != nil {
		return nil, 0, fmt.Errorf("extractionEventRepo.ListByRun count: %w", err)
	}

	var events []domain.ExtractionEvent
	err = r.db.SelectContext(ctx, &events,
		`SELECT id, run_id, kind, document_index, process_identifier, category,
			batch_index, batch_count, answer_count, raw_reply, detail, model, occurred_at
		 FROM extraction_events
		 WHERE run_id = $1
		 ORDER BY occurred_at ASC
		 LIMIT $2 OFFSET $3`,
		runID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("extractionEventRepo.ListByRun: %w", err)
	}
	return events, total, nil
}
