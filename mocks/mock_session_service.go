package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"docqa/internal/service"
	"docqa/internal/session"
)

// MockSessionService is a mock implementation of service.SessionService.
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Create(ctx context.Context) (*service.SessionToken, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionToken), args.Error(1)
}

func (m *MockSessionService) ValidateToken(tokenString string) (*service.SessionClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionClaims), args.Error(1)
}

func (m *MockSessionService) Resolve(ctx context.Context, tokenString string) (*session.State, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.State), args.Error(1)
}

func (m *MockSessionService) End(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
