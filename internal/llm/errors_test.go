package llm_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/llm"
)

func TestNewRateLimitError_DefaultsRetryAfter(t *testing.T) {
	err := llm.NewRateLimitError("openai", errors.New("429"), 0)
	assert.Equal(t, llm.DefaultRetryAfter, err.RetryAfter)
	assert.Equal(t, "openai", err.Provider)
	assert.Contains(t, err.Error(), "openai rate limited")
}

func TestRateLimitError_Unwrap(t *testing.T) {
	base := errors.New("too many")
	err := llm.NewRateLimitError("claude", base, 5*time.Second)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, 5*time.Second, err.RetryAfter)
}

func TestAsRateLimit(t *testing.T) {
	wrapped := fmt.Errorf("document 3: %w", llm.NewRateLimitError("gemini", errors.New("429"), time.Second))
	rlErr, ok := llm.AsRateLimit(wrapped)
	require.True(t, ok)
	assert.Equal(t, "gemini", rlErr.Provider)

	_, ok = llm.AsRateLimit(errors.New("connection reset"))
	assert.False(t, ok)
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   string
		want time.Duration
	}{
		{"absent", "", 0},
		{"seconds", "30", 30 * time.Second},
		{"zero seconds", "0", 0},
		{"garbage", "soon", 0},
		{"http date", now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{"past date", now.Add(-time.Minute).Format(http.TimeFormat), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.in != "" {
				h.Set("Retry-After", tt.in)
			}
			assert.Equal(t, tt.want, llm.RetryAfter(h, now))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", llm.Truncate("abc", 5))
	assert.Equal(t, "ab...", llm.Truncate("abcdef", 2))
	// "ã" is two bytes; cutting inside it backs off to the rune start
	assert.Equal(t, "n...", llm.Truncate("não", 2))
}
