package errors

import (
	"fmt"
	"net/http"
)

// Sentinel APIError values for use with errors.Is().
// These match on status code only.
var (
	ErrNotFound     = &APIError{StatusCode: http.StatusNotFound}
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}
	ErrForbidden    = &APIError{StatusCode: http.StatusForbidden}
	ErrRateLimited  = &APIError{StatusCode: http.StatusTooManyRequests}
)

// APIError represents a non-2xx response from the hub or the rows service.
// It supports error wrapping via Unwrap() and comparison via Is().
type APIError struct {
	StatusCode int    `json:"-"`
	URL        string `json:"-"`
	Message    string `json:"message"`
	// ErrorMessage is the hub's {"error": "..."} body field.
	ErrorMessage string `json:"error"`
	Err          error  `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.ErrorMessage
	}

	switch {
	case msg != "" && e.URL != "":
		return fmt.Sprintf("robodash: request to %s failed (status %d): %s", e.URL, e.StatusCode, msg)
	case msg != "":
		return fmt.Sprintf("robodash: request failed (status %d): %s", e.StatusCode, msg)
	case e.URL != "":
		return fmt.Sprintf("robodash: request to %s failed (status %d)", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("robodash: request failed (status %d)", e.StatusCode)
	}
}

// Unwrap returns the underlying error for error chain support.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches on status code, allowing comparisons like:
//
//	if errors.Is(err, robodash.ErrNotFound) { ... }
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode
}

// WithError wraps an underlying error in the APIError.
func (e *APIError) WithError(err error) *APIError {
	e.Err = err
	return e
}

// IsNotFound returns true if the error is a 404 Not Found error.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsRateLimited returns true if the error is a 429 Too Many Requests error.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsServerError returns true if the error is a 5xx server error.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// IsRetryable reports whether repeating the request could succeed.
// The client itself never retries.
func (e *APIError) IsRetryable() bool {
	return e.IsRateLimited() || e.IsServerError()
}

// Code returns the error category.
func (e *APIError) Code() ErrorCode {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrCodeAuth
	case http.StatusTooManyRequests:
		return ErrCodeRateLimit
	case http.StatusNotFound:
		return ErrCodeNotFound
	default:
		return ErrCodeAPI
	}
}

var _ Error = (*APIError)(nil)
