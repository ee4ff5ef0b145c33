package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"docqa/internal/domain"
	"docqa/internal/service"
	"docqa/internal/session"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) Models() service.ModelsInfo {
	args := m.Called()
	return args.Get(0).(service.ModelsInfo)
}

func (m *MockExtractionService) Run(ctx context.Context, state *session.State, input service.StartExtractionInput) (*domain.ResultTable, error) {
	args := m.Called(ctx, state, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResultTable), args.Error(1)
}

func (m *MockExtractionService) Start(ctx context.Context, state *session.State, input service.StartExtractionInput) (*domain.RunProgress, error) {
	args := m.Called(ctx, state, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RunProgress), args.Error(1)
}

func (m *MockExtractionService) Progress(state *session.State) domain.RunProgress {
	args := m.Called(state)
	return args.Get(0).(domain.RunProgress)
}

func (m *MockExtractionService) Events(ctx context.Context, runID uuid.UUID, offset, limit int) ([]domain.ExtractionEvent, int, error) {
	args := m.Called(ctx, runID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ExtractionEvent), args.Int(1), args.Error(2)
}
