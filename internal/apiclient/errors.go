package apiclient

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/lasi/internal/lang"
)

// NetworkError means the server could not be reached or the reply could
// not be read.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamError is a server-side or AI provider failure.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (%d): %s", e.Status, e.Message)
}

// RateLimited means the server throttled the request.
type RateLimited struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimited) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// NotFound means the requested text or part does not exist.
type NotFound struct {
	Message string
}

func (e *NotFound) Error() string {
	return "not found: " + e.Message
}

// InvalidRequest means the server rejected the request as malformed.
type InvalidRequest struct {
	Message string
}

func (e *InvalidRequest) Error() string {
	return "invalid request: " + e.Message
}

// Message returns a short localized description of err for display.
func Message(l lang.Language, err error) string {
	var (
		netErr   *NetworkError
		upErr    *UpstreamError
		rlErr    *RateLimited
		nfErr    *NotFound
		invalErr *InvalidRequest
	)
	switch {
	case errors.As(err, &netErr):
		return lang.Text(l, lang.MsgNetwork)
	case errors.As(err, &rlErr):
		return lang.Text(l, lang.MsgRateLimited)
	case errors.As(err, &nfErr):
		return lang.Text(l, lang.MsgNotFound)
	case errors.As(err, &invalErr):
		return lang.Text(l, lang.MsgInvalidRequest)
	case errors.As(err, &upErr):
		return lang.Text(l, lang.MsgUpstream)
	}
	return lang.Text(l, lang.MsgUpstream)
}
