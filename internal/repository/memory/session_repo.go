// Package memory keeps session state in process memory.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"docqa/internal/domain"
	"docqa/internal/port"
	"docqa/internal/session"
)

type sessionRepo struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session.State
}

// NewSessionRepo creates an in-memory SessionRepository.
func NewSessionRepo() port.SessionRepository {
	return &sessionRepo{sessions: make(map[uuid.UUID]*session.State)}
}

func (r *sessionRepo) Create(_ context.Context, state *session.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[state.ID]; ok {
		return fmt.Errorf("sessionRepo.Create: duplicate id %s", state.ID)
	}
	r.sessions[state.ID] = state
	return nil
}

func (r *sessionRepo) GetByID(_ context.Context, id uuid.UUID) (*session.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return state, nil
}

// Delete removes the session and cancels its active run.
func (r *sessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	state, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}
	state.CancelRun()
	return nil
}

func (r *sessionRepo) DeleteIdleSince(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	var expired []*session.State
	for id, state := range r.sessions {
		if state.LastSeen().Before(cutoff) {
			expired = append(expired, state)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, state := range expired {
		state.CancelRun()
	}
	return len(expired), nil
}

func (r *sessionRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), nil
}
