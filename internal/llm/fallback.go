package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"docqa/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackInvoker tries providers in order, skipping those with open circuits.
// Calls are still made one at a time. Only the first provider receives the
// requested model; the others run their own default model. It implements
// port.ModelInvoker.
type FallbackInvoker struct {
	invokers []port.ModelInvoker
	circuits []*circuitState
	names    []string
	now      func() time.Time
}

// NewFallbackInvoker creates a FallbackInvoker from an ordered list of invokers and their names.
func NewFallbackInvoker(invokers []port.ModelInvoker, names []string) *FallbackInvoker {
	circuits := make([]*circuitState, len(invokers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackInvoker{
		invokers: invokers,
		circuits: circuits,
		names:    names,
		now:      time.Now,
	}
}

func (f *FallbackInvoker) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, inv := range f.invokers {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			logrus.Debugf("llm.FallbackInvoker: skipping %s (circuit open until %s)", f.names[i], resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		tierReq := req
		if i > 0 {
			tierReq.Model = ""
		}
		out, err := inv.Complete(ctx, tierReq)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}

		logrus.Warnf("llm.FallbackInvoker: %s failed: %v", f.names[i], err)
		lastErr = err

		if rlErr, ok := AsRateLimit(err); ok {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(f.now())
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", errors.New("all providers rate limited"), retryAfter)
	}

	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}
