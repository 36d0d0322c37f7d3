// Package apierr carries an HTTP status and a stable error code alongside
// an error so handlers can map failures to the JSON error envelope.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes used in the JSON error envelope.
const (
	CodeInvalidRequest = "invalid_request"
	CodeNotFound       = "not_found"
	CodeRateLimited    = "rate_limited"
	CodeUpstream       = "upstream_error"
	CodeInternal       = "internal_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func InvalidRequest(format string, args ...any) *Error {
	return New(http.StatusBadRequest, CodeInvalidRequest, fmt.Errorf(format, args...))
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, err)
}

func Upstream(err error) *Error {
	return New(http.StatusBadGateway, CodeUpstream, err)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
