package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"docqa/internal/domain"
	"docqa/internal/service"
	"docqa/internal/session"
)

// MockResultService is a mock implementation of service.ResultService.
type MockResultService struct {
	mock.Mock
}

func (m *MockResultService) Get(state *session.State) (*domain.ResultTable, error) {
	args := m.Called(state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResultTable), args.Error(1)
}

func (m *MockResultService) Export(state *session.State, w io.Writer, format domain.ExportFormat) (string, error) {
	args := m.Called(state, w, format)
	return args.String(0), args.Error(1)
}

func (m *MockResultService) Publish(ctx context.Context, state *session.State, format domain.ExportFormat) (*service.PublishedExport, error) {
	args := m.Called(ctx, state, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PublishedExport), args.Error(1)
}
