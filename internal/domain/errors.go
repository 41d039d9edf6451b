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

	// ErrInvalidItemStatus is returned when a learning item status is outside 0..4.
	ErrInvalidItemStatus = errors.New("invalid item status")

	// ErrInvalidExamMode is returned when an exam mode is not one of
	// immediate, random or complete.
	ErrInvalidExamMode = errors.New("invalid exam mode")

	// ErrInvalidExamStatus is returned when an exam status is not valid.
	ErrInvalidExamStatus = errors.New("invalid exam status")

	// ErrInvalidExamTransition is returned when an exam status change does not
	// follow the pending -> generated -> grading -> completed lifecycle.
	ErrInvalidExamTransition = errors.New("invalid exam status transition")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)
