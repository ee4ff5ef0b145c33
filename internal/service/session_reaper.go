package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"docqa/internal/port"
)

// SessionReaper discards sessions idle for longer than their TTL.
type SessionReaper struct {
	repo     port.SessionRepository
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

// NewSessionReaper creates a new SessionReaper.
func NewSessionReaper(repo port.SessionRepository, ttl, interval time.Duration) *SessionReaper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionReaper{repo: repo, ttl: ttl, interval: interval, now: time.Now}
}

// Start runs the reaping loop until ctx is canceled.
func (r *SessionReaper) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logrus.Infof("sessionReaper: started (interval=%s, ttl=%s)", r.interval, r.ttl)

	for {
		select {
		case <-ctx.Done():
			logrus.Info("sessionReaper: shutdown complete")
			return
		case <-ticker.C:
			r.ReapOnce(ctx)
		}
	}
}

// ReapOnce deletes every session idle since before now-ttl and returns how
// many were removed.
func (r *SessionReaper) ReapOnce(ctx context.Context) int {
	n, err := r.repo.DeleteIdleSince(ctx, r.now().Add(-r.ttl))
	if err != nil {
		if ctx.Err() == nil {
			logrus.Errorf("sessionReaper: DeleteIdleSince error: %v", err)
		}
		return 0
	}
	if n > 0 {
		logrus.Infof("sessionReaper: discarded %d idle sessions", n)
	}
	return n
}
