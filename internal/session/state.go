// Package session holds the explicit per-user application state: question
// sets, the loaded corpus, the published results and the status of the
// current extraction run.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"docqa/internal/domain"
	"docqa/internal/questionstore"
)

// State is one session's application state. All methods are safe for
// concurrent use.
type State struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Questions *questionstore.Store

	mu       sync.RWMutex
	lastSeen time.Time
	corpus   *domain.Corpus
	results  *domain.ResultTable
	progress domain.RunProgress
	cancel   context.CancelFunc
}

// New creates an empty state.
func New(now time.Time) *State {
	return &State{
		ID:        uuid.New(),
		CreatedAt: now,
		Questions: questionstore.New(),
		lastSeen:  now,
	}
}

// Touch records activity at now.
func (s *State) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
}

// LastSeen returns the time of the latest activity.
func (s *State) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// SetCorpus replaces the loaded corpus.
func (s *State) SetCorpus(c *domain.Corpus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corpus = c
}

// Corpus returns the loaded corpus, or nil.
func (s *State) Corpus() *domain.Corpus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus
}

// Results returns the last published result table, or nil.
func (s *State) Results() *domain.ResultTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results
}

// BeginRun marks a run as started. Only one run may be active at a time.
// cancel is invoked by CancelRun.
func (s *State) BeginRun(runID uuid.UUID, total int, now time.Time, cancel context.CancelFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progress.Running {
		return domain.ErrRunInProgress
	}
	s.progress = domain.RunProgress{
		Running:   true,
		RunID:     runID,
		Total:     total,
		StartedAt: now,
	}
	s.cancel = cancel
	return nil
}

// UpdateProgress records that processed of total documents are done.
func (s *State) UpdateProgress(runID uuid.UUID, processed, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progress.RunID != runID {
		return
	}
	s.progress.Processed = processed
	s.progress.Total = total
	if total > 0 {
		s.progress.Fraction = float64(processed) / float64(total)
	}
}

// FinishRun ends the run. The table is published only when err is nil;
// otherwise the previously published results stay in place.
func (s *State) FinishRun(runID uuid.UUID, table *domain.ResultTable, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progress.RunID != runID {
		return
	}
	s.progress.Running = false
	s.cancel = nil
	if err != nil {
		s.progress.LastError = err.Error()
		return
	}
	s.progress.LastError = ""
	s.progress.Fraction = 1
	s.results = table
}

// CancelRun cancels the active run, if any.
func (s *State) CancelRun() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Progress returns a copy of the run status.
func (s *State) Progress() domain.RunProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}
