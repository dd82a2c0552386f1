// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPassword is returned when a password doesn't meet requirements.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidStates is returned when a knowledge structure's state text
	// cannot be parsed into a valid state family.
	ErrInvalidStates = errors.New("invalid state family")

	// ErrInvalidKind is returned when a structure kind is not one of the
	// known classifications.
	ErrInvalidKind = errors.New("invalid structure kind")

	// ErrInvalidAssessmentStatus is returned when an assessment status is
	// not valid or a status transition is not allowed.
	ErrInvalidAssessmentStatus = errors.New("invalid assessment status")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)
