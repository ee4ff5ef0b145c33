package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/port"
	"docqa/internal/session"
)

const sessionAudience = "session"

// SessionClaims are the JWT claims addressing one session.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID uuid.UUID `json:"session_id"`
}

// SessionToken is returned when a session is created.
type SessionToken struct {
	Token     string    `json:"token"`
	SessionID uuid.UUID `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionService defines the session lifecycle contract.
type SessionService interface {
	Create(ctx context.Context) (*SessionToken, error)
	ValidateToken(tokenString string) (*SessionClaims, error)
	Resolve(ctx context.Context, tokenString string) (*session.State, error)
	End(ctx context.Context, id uuid.UUID) error
}

type sessionService struct {
	repo port.SessionRepository
	cfg  config.SessionConfig
	now  func() time.Time
}

// NewSessionService creates a new SessionService implementation.
func NewSessionService(repo port.SessionRepository, cfg config.SessionConfig) SessionService {
	return &sessionService{repo: repo, cfg: cfg, now: time.Now}
}

func (s *sessionService) Create(ctx context.Context) (*SessionToken, error) {
	now := s.now()
	state := session.New(now)
	if err := s.repo.Create(ctx, state); err != nil {
		return nil, fmt.Errorf("session.Create: %w", err)
	}

	expiresAt := now.Add(s.cfg.TTL)
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   state.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{sessionAudience},
		},
		SessionID: state.ID,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		_ = s.repo.Delete(ctx, state.ID)
		return nil, fmt.Errorf("session.Create signing token: %w", err)
	}

	logrus.Infof("session.Create: created session %s", state.ID)
	return &SessionToken{Token: token, SessionID: state.ID, ExpiresAt: expiresAt}, nil
}

func (s *sessionService) ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithAudience(sessionAudience),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func (s *sessionService) Resolve(ctx context.Context, tokenString string) (*session.State, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	state, err := s.repo.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("session.Resolve: %w", err)
	}
	state.Touch(s.now())
	return state, nil
}

func (s *sessionService) End(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logrus.Infof("session.End: discarded session %s", id)
	return nil
}
