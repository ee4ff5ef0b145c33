package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExtractionEvent is emitted by the extraction engine for observability.
// Batch fields are zero for run- and document-level events.
type ExtractionEvent struct {
	ID                uuid.UUID `json:"id" db:"id"`
	RunID             uuid.UUID `json:"run_id" db:"run_id"`
	Kind              EventKind `json:"kind" db:"kind"`
	DocumentIndex     int       `json:"document_index" db:"document_index"`
	ProcessIdentifier string    `json:"process_identifier,omitempty" db:"process_identifier"`
	Category          string    `json:"category,omitempty" db:"category"`
	BatchIndex        int       `json:"batch_index" db:"batch_index"`
	BatchCount        int       `json:"batch_count" db:"batch_count"`
	Labels            []string  `json:"labels,omitempty" db:"-"`
	AnswerCount       int       `json:"answer_count" db:"answer_count"`
	RawReply          string    `json:"raw_reply,omitempty" db:"raw_reply"`
	Detail            string    `json:"detail,omitempty" db:"detail"`
	Model             string    `json:"model,omitempty" db:"model"`
	OccurredAt        time.Time `json:"occurred_at" db:"occurred_at"`
}
