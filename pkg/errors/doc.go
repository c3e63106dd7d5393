// Package errors provides the error types shared by the robodash client
// and the dashboard pipeline.
//
// # Error Types
//
//   - APIError: a non-2xx response from the hub or rows service
//   - EmptyResultError: a document that parsed but held nothing usable
//   - DecodeError: a body that was not the expected JSON shape
//   - VersionError: an unknown codebase version tag
//   - ValidationError: bad caller input
//
// Each implements Error, which exposes a Code for metrics and logging:
//
//	var coded errors.Error
//	if stdErrors.As(err, &coded) {
//	    log.Printf("fetch failed: %s", coded.Code())
//	}
//
// # Sentinel Errors
//
// ErrNotFound, ErrUnauthorized, ErrForbidden and ErrRateLimited match any
// APIError with the same status code:
//
//	if stdErrors.Is(err, errors.ErrNotFound) {
//	    // the file does not exist for this dataset
//	}
package errors
