package errors

import (
	"errors"
	"strings"
)

// ErrorCode represents a category of error for metrics and logging.
type ErrorCode string

const (
	ErrCodeConfig     ErrorCode = "CONFIG"     // Configuration errors
	ErrCodeValidation ErrorCode = "VALIDATION" // Input validation errors
	ErrCodeNetwork    ErrorCode = "NETWORK"    // Network/connection errors
	ErrCodeAPI        ErrorCode = "API"        // Non-2xx responses
	ErrCodeAuth       ErrorCode = "AUTH"       // 401/403
	ErrCodeRateLimit  ErrorCode = "RATE_LIMIT" // 429
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"  // 404
	ErrCodeDecode     ErrorCode = "DECODE"     // Body was not the expected shape
	ErrCodeEmpty      ErrorCode = "EMPTY"      // Nothing usable in a document
	ErrCodeVersion    ErrorCode = "VERSION"    // Missing or unsupported format version
)

// Error is the common interface for categorized errors in this module.
type Error interface {
	error

	// Code returns a machine-readable error code for categorization.
	Code() ErrorCode

	// IsRetryable returns true if repeating the operation could succeed.
	IsRetryable() bool
}

// AsAPIError extracts an *APIError from the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// CodeOf returns the category of err, or ErrCodeNetwork for uncategorized
// non-nil errors, which in this module come from the transport.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var coded Error
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ErrCodeNetwork
}

// IsRetryable returns true if the error represents a retryable condition.
func IsRetryable(err error) bool {
	var coded Error
	if errors.As(err, &coded) {
		return coded.IsRetryable()
	}
	return false
}

// MetricName converts a code into a lower-case metric suffix, e.g. "rate_limit".
func (c ErrorCode) MetricName() string {
	return strings.ToLower(string(c))
}
