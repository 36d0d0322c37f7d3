package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrRateLimit means the provider answered 429. RetryAfter is zero when
// the provider did not say how long to wait.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider rate limit, retry in %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("provider rate limit: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse means the model produced output that is not JSON or
// does not match the requested schema. Content is the raw output.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("malformed model output: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers transport failures, 5xx answers and any
// other error the provider SDK reports.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "model provider unavailable"
	}
	return fmt.Sprintf("model provider unavailable: %v", e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded means structured output was cut off at MaxTokens
// and cannot be parsed. Long reading passages hit this first.
type ErrMaxTokensExceeded struct {
	Content   json.RawMessage
	MaxTokens int
}

func (e *ErrMaxTokensExceeded) Error() string {
	return fmt.Sprintf("model output truncated at %d tokens", e.MaxTokens)
}

// RetryAfter reports whether err is a provider rate limit, and the delay
// the provider asked for.
func RetryAfter(err error) (time.Duration, bool) {
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		return 0, false
	}
	return rl.RetryAfter, true
}

// classifyStatus turns an SDK error carrying an HTTP status into one of
// the package errors. header may be nil.
func classifyStatus(status int, header http.Header, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{RetryAfter: parseRetryAfter(header, time.Now()), Err: err}
	default:
		return &ErrProviderUnavailable{Err: err}
	}
}

// parseRetryAfter reads Retry-After as seconds or an HTTP date.
func parseRetryAfter(h http.Header, now time.Time) time.Duration {
	if h == nil {
		return 0
	}
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs * float64(time.Second))
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}
