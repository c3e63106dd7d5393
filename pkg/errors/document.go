package errors

import (
	"fmt"
)

// ErrNoVersion is returned when a metadata document carries no codebase
// version tag. Its code is ErrCodeVersion.
var ErrNoVersion error = noVersionError{}

type noVersionError struct{}

func (noVersionError) Error() string     { return "robodash: no codebase version" }
func (noVersionError) Code() ErrorCode   { return ErrCodeVersion }
func (noVersionError) IsRetryable() bool { return false }

// EmptyResultError reports that a document was fetched successfully but
// yielded no usable records, e.g. every line lacked the field of interest.
type EmptyResultError struct {
	// What names the missing data, e.g. "episode lengths".
	What string
	// Skipped counts lines that were malformed or lacked the field.
	Skipped int
}

// Error implements the error interface.
func (e *EmptyResultError) Error() string {
	if e.Skipped > 0 {
		return fmt.Sprintf("robodash: no %s found (%d lines skipped)", e.What, e.Skipped)
	}
	return fmt.Sprintf("robodash: no %s found", e.What)
}

// Code implements Error.
func (e *EmptyResultError) Code() ErrorCode { return ErrCodeEmpty }

// IsRetryable implements Error.
func (e *EmptyResultError) IsRetryable() bool { return false }

// DecodeError reports a response body that could not be decoded.
type DecodeError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("robodash: failed to decode %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error { return e.Err }

// Code implements Error.
func (e *DecodeError) Code() ErrorCode { return ErrCodeDecode }

// IsRetryable implements Error.
func (e *DecodeError) IsRetryable() bool { return false }

// VersionError reports a codebase version tag that is present but unknown.
type VersionError struct {
	Tag string
}

// Error implements the error interface.
func (e *VersionError) Error() string {
	return fmt.Sprintf("robodash: unsupported codebase version %q", e.Tag)
}

// Code implements Error.
func (e *VersionError) Code() ErrorCode { return ErrCodeVersion }

// IsRetryable implements Error.
func (e *VersionError) IsRetryable() bool { return false }

var (
	_ Error = (*EmptyResultError)(nil)
	_ Error = (*DecodeError)(nil)
	_ Error = (*VersionError)(nil)
	_ Error = noVersionError{}
)
