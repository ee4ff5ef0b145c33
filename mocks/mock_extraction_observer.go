package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docqa/internal/domain"
)

// MockExtractionObserver is a mock implementation of port.ExtractionObserver.
type MockExtractionObserver struct {
	mock.Mock
}

func (m *MockExtractionObserver) Observe(ctx context.Context, event *domain.ExtractionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
