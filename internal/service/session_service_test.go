package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/service"
	"docqa/internal/session"
	"docqa/mocks"
)

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret: "test-secret-key-for-unit-tests",
		TTL:    time.Hour,
		Issuer: "docqa-test",
	}
}

func TestSessionService_Create_IssuesValidToken(t *testing.T) {
	repo := new(mocks.MockSessionRepo)
	svc := service.NewSessionService(repo, testSessionConfig())

	repo.On("Create", mock.Anything, mock.AnythingOfType("*session.State")).Return(nil)

	tok, err := svc.Create(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)
	assert.NotEqual(t, uuid.Nil, tok.SessionID)
	assert.True(t, tok.ExpiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, tok.SessionID, claims.SessionID)
	assert.Equal(t, "docqa-test", claims.Issuer)

	repo.AssertExpectations(t)
}

func TestSessionService_Create_RepoError(t *testing.T) {
	repo := new(mocks.MockSessionRepo)
	svc := service.NewSessionService(repo, testSessionConfig())

	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("full"))

	tok, err := svc.Create(context.Background())
	assert.Error(t, err)
	assert.Nil(t, tok)
}

func TestSessionService_ValidateToken_Rejects(t *testing.T) {
	repo := new(mocks.MockSessionRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	cfg := testSessionConfig()
	svc := service.NewSessionService(repo, cfg)

	other := cfg
	other.Secret = "another-secret"
	foreign, err := service.NewSessionService(repo, other).Create(context.Background())
	require.NoError(t, err)

	expiredCfg := cfg
	expiredCfg.TTL = -time.Minute
	expired, err := service.NewSessionService(repo, expiredCfg).Create(context.Background())
	require.NoError(t, err)

	otherIssuer := cfg
	otherIssuer.Issuer = "someone-else"
	wrongIssuer, err := service.NewSessionService(repo, otherIssuer).Create(context.Background())
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign.Token},
		{"expired", expired.Token},
		{"wrong issuer", wrongIssuer.Token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateToken(tt.token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
			assert.Nil(t, claims)
		})
	}
}

func TestSessionService_Resolve_TouchesSession(t *testing.T) {
	repo := new(mocks.MockSessionRepo)
	svc := service.NewSessionService(repo, testSessionConfig())

	var created *session.State
	repo.On("Create", mock.Anything, mock.AnythingOfType("*session.State")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*session.State) }).
		Return(nil)

	tok, err := svc.Create(context.Background())
	require.NoError(t, err)
	require.NotNil(t, created)

	before := created.LastSeen()
	repo.On("GetByID", mock.Anything, tok.SessionID).Return(created, nil)

	time.Sleep(5 * time.Millisecond)
	state, err := svc.Resolve(context.Background(), tok.Token)
	require.NoError(t, err)
	assert.Same(t, created, state)
	assert.True(t, state.LastSeen().After(before))
}

func TestSessionService_Resolve_SessionGone(t *testing.T) {
	repo := new(mocks.MockSessionRepo)
	svc := service.NewSessionService(repo, testSessionConfig())

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	tok, err := svc.Create(context.Background())
	require.NoError(t, err)

	repo.On("GetByID", mock.Anything, tok.SessionID).Return(nil, domain.ErrSessionNotFound)

	state, err := svc.Resolve(context.Background(), tok.Token)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Nil(t, state)
}

func TestSessionService_End(t *testing.T) {
	repo := new(mocks.MockSessionRepo)
	svc := service.NewSessionService(repo, testSessionConfig())
	id := uuid.New()

	repo.On("Delete", mock.Anything, id).Return(nil)

	assert.NoError(t, svc.End(context.Background(), id))
	repo.AssertExpectations(t)
}

func TestSessionReaper_ReapOnce(t *testing.T) {
	repo := new(mocks.MockSessionRepo)
	reaper := service.NewSessionReaper(repo, time.Hour, time.Minute)

	repo.On("DeleteIdleSince", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		return cutoff.Before(time.Now().Add(-59 * time.Minute))
	})).Return(2, nil).Once()

	assert.Equal(t, 2, reaper.ReapOnce(context.Background()))
	repo.AssertExpectations(t)
}

func TestSessionReaper_ReapOnce_Error(t *testing.T) {
	repo := new(mocks.MockSessionRepo)
	reaper := service.NewSessionReaper(repo, time.Hour, time.Minute)

	repo.On("DeleteIdleSince", mock.Anything, mock.Anything).Return(0, errors.New("boom"))

	assert.Equal(t, 0, reaper.ReapOnce(context.Background()))
}

func TestSessionReaper_Start_StopsOnCancel(t *testing.T) {
	repo := new(mocks.MockSessionRepo)
	repo.On("DeleteIdleSince", mock.Anything, mock.Anything).Return(0, nil).Maybe()
	reaper := service.NewSessionReaper(repo, time.Hour, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reaper.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after cancel")
	}
}
