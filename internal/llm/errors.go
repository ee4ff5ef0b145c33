package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultRetryAfter is assumed when a 429 carries no usable Retry-After.
const DefaultRetryAfter = 60 * time.Second

// RateLimitError indicates a model provider answered HTTP 429. The fallback
// invoker keeps the provider's circuit open for RetryAfter.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. A non-positive retryAfter
// becomes DefaultRetryAfter.
func NewRateLimitError(provider string, err error, retryAfter time.Duration) *RateLimitError {
	if retryAfter <= 0 {
		retryAfter = DefaultRetryAfter
	}
	return &RateLimitError{Provider: provider, RetryAfter: retryAfter, Err: err}
}

// AsRateLimit reports whether err carries a RateLimitError.
func AsRateLimit(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}

// RetryAfter reads the Retry-After header in either delta-seconds or
// HTTP-date form. Zero means absent, malformed or already past.
func RetryAfter(h http.Header, now time.Time) time.Duration {
	val := strings.TrimSpace(h.Get("Retry-After"))
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(val); err == nil {
		if d := at.Sub(now); d > 0 {
			return d.Round(time.Second)
		}
	}
	return 0
}

// Truncate shortens s to at most maxLen bytes for error messages without
// splitting a UTF-8 sequence.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
