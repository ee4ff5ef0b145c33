package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"docqa/internal/domain"
)

// MockExtractionEventRepo is a mock implementation of port.ExtractionEventRepository.
type MockExtractionEventRepo struct {
	mock.Mock
}

func (m *MockExtractionEventRepo) Create(ctx context.Context, event *domain.ExtractionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockExtractionEventRepo) ListByRun(ctx context.Context, runID uuid.UUID, offset, limit int) ([]domain.ExtractionEvent, int, error) {
	args := m.Called(ctx, runID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ExtractionEvent), args.Int(1), args.Error(2)
}
