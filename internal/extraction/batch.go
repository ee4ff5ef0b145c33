package extraction

import (
	"fmt"

	"docqa/internal/domain"
)

// MaxBatchSize is the largest number of questions sent in one model call.
const MaxBatchSize = 50

// ValidateBatchSize checks size against [1, limit]. A non-positive limit
// falls back to MaxBatchSize.
func ValidateBatchSize(size, limit int) error {
	if limit <= 0 {
		limit = MaxBatchSize
	}
	if size < 1 || size > limit {
		return fmt.Errorf("%w: %d not in [1, %d]", domain.ErrInvalidBatchSize, size, limit)
	}
	return nil
}

// Partition splits questions into consecutive batches of at most size
// records, preserving order. The last batch may be smaller. It returns nil
// for size < 1.
func Partition(questions []domain.QuestionRecord, size int) [][]domain.QuestionRecord {
	if size < 1 || len(questions) == 0 {
		return nil
	}
	count := (len(questions) + size - 1) / size
	batches := make([][]domain.QuestionRecord, 0, count)
	for start := 0; start < len(questions); start += size {
		end := start + size
		if end > len(questions) {
			end = len(questions)
		}
		batches = append(batches, questions[start:end:end])
	}
	return batches
}
