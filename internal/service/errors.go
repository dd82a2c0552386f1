// Package service provides application-level services for managing users,
// knowledge structures, and assessments.
package service

import "errors"

// Common service errors. Service methods return these sentinels for expected
// conditions so callers can branch with errors.Is; the API layer maps them to
// HTTP status codes.
var (
	// ErrNotOwned indicates a resource is owned by a different user than the
	// one making the request. Mapped to HTTP 403.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrAssessmentFinished indicates an operation that requires an active
	// assessment was attempted on a finished one. Mapped to HTTP 409.
	ErrAssessmentFinished = errors.New("assessment has already finished")

	// ErrWrongItem indicates a response was submitted for an item other than
	// the one currently asked. Mapped to HTTP 409.
	ErrWrongItem = errors.New("response does not match the current question")
)
