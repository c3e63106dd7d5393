package robodash

import (
	"errors"

	pkgerrors "github.com/jdziat/robodash/pkg/errors"
)

// Error types re-exported from pkg/errors.
type (
	// APIError is a non-2xx response from the hub or the rows endpoint.
	APIError = pkgerrors.APIError
	// ValidationError reports an invalid argument or configuration value.
	ValidationError = pkgerrors.ValidationError
	// EmptyResultError reports a document that yielded no usable records.
	EmptyResultError = pkgerrors.EmptyResultError
	// DecodeError reports a response body that could not be decoded.
	DecodeError = pkgerrors.DecodeError
	// VersionError reports an unsupported codebase version tag.
	VersionError = pkgerrors.VersionError
	// ErrorCode categorizes errors for metrics and logging.
	ErrorCode = pkgerrors.ErrorCode
	// Error is implemented by every categorized error in this module.
	Error = pkgerrors.Error
)

// Error codes.
const (
	ErrCodeConfig     = pkgerrors.ErrCodeConfig
	ErrCodeValidation = pkgerrors.ErrCodeValidation
	ErrCodeNetwork    = pkgerrors.ErrCodeNetwork
	ErrCodeAPI        = pkgerrors.ErrCodeAPI
	ErrCodeAuth       = pkgerrors.ErrCodeAuth
	ErrCodeRateLimit  = pkgerrors.ErrCodeRateLimit
	ErrCodeNotFound   = pkgerrors.ErrCodeNotFound
	ErrCodeDecode     = pkgerrors.ErrCodeDecode
	ErrCodeEmpty      = pkgerrors.ErrCodeEmpty
	ErrCodeVersion    = pkgerrors.ErrCodeVersion
)

// Status sentinels. They match any *APIError with the same status code:
//
//	if errors.Is(err, robodash.ErrNotFound) { ... }
var (
	ErrNotFound     = pkgerrors.ErrNotFound
	ErrUnauthorized = pkgerrors.ErrUnauthorized
	ErrForbidden    = pkgerrors.ErrForbidden
	ErrRateLimited  = pkgerrors.ErrRateLimited
	ErrNoVersion    = pkgerrors.ErrNoVersion
)

// Client errors.
var (
	ErrNilConfig       = errors.New("robodash: config cannot be nil")
	ErrResponseTooLong = errors.New("robodash: response body exceeds limit")
)

// NewValidationError creates a validation error for field.
func NewValidationError(field, message string) *ValidationError {
	return pkgerrors.NewValidationError(field, message)
}

// NewValidationErrorWithCause creates a validation error wrapping cause.
func NewValidationErrorWithCause(field, message string, cause error) *ValidationError {
	return pkgerrors.NewValidationErrorWithCause(field, message, cause)
}

// AsAPIError extracts an *APIError from the chain.
func AsAPIError(err error) (*APIError, bool) {
	return pkgerrors.AsAPIError(err)
}

// IsNotFound reports whether err is a 404 from the hub.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRetryable reports whether repeating the request could succeed. The
// client never retries on its own.
func IsRetryable(err error) bool {
	return pkgerrors.IsRetryable(err)
}

// CodeOf returns the category of err.
func CodeOf(err error) ErrorCode {
	return pkgerrors.CodeOf(err)
}
