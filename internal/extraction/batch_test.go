package extraction_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
	"docqa/internal/extraction"
)

func questions(n int) []domain.QuestionRecord {
	qs := make([]domain.QuestionRecord, n)
	for i := range qs {
		qs[i] = domain.QuestionRecord{
			Label:    fmt.Sprintf("q%d", i),
			Question: fmt.Sprintf("Question %d?", i),
			Prompt:   fmt.Sprintf("Answer question %d", i),
		}
	}
	return qs
}

func TestPartition_SevenByThree(t *testing.T) {
	qs := questions(7)

	batches := extraction.Partition(qs, 3)

	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 3)
	assert.Len(t, batches[1], 3)
	assert.Len(t, batches[2], 1)

	var flat []domain.QuestionRecord
	for _, b := range batches {
		flat = append(flat, b...)
	}
	assert.Equal(t, qs, flat)
}

func TestPartition_ExactMultiple(t *testing.T) {
	batches := extraction.Partition(questions(6), 3)
	assert.Len(t, batches, 2)
}

func TestPartition_BatchLargerThanCategory(t *testing.T) {
	batches := extraction.Partition(questions(2), 50)
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 2)
}

func TestPartition_EmptyAndInvalid(t *testing.T) {
	assert.Nil(t, extraction.Partition(nil, 3))
	assert.Nil(t, extraction.Partition(questions(3), 0))
}

func TestPartition_BatchesDoNotAlias(t *testing.T) {
	qs := questions(4)
	batches := extraction.Partition(qs, 2)

	batches[0] = append(batches[0], domain.QuestionRecord{Label: "extra"})

	assert.Equal(t, "q2", qs[2].Label)
}

func TestValidateBatchSize(t *testing.T) {
	assert.NoError(t, extraction.ValidateBatchSize(1, 50))
	assert.NoError(t, extraction.ValidateBatchSize(50, 50))
	assert.ErrorIs(t, extraction.ValidateBatchSize(0, 50), domain.ErrInvalidBatchSize)
	assert.ErrorIs(t, extraction.ValidateBatchSize(51, 50), domain.ErrInvalidBatchSize)
	assert.ErrorIs(t, extraction.ValidateBatchSize(51, 0), domain.ErrInvalidBatchSize)
	assert.ErrorIs(t, extraction.ValidateBatchSize(11, 10), domain.ErrInvalidBatchSize)
}
