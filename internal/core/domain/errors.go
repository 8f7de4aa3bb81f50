package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Copy Errors.

	// ErrPathRejected indicates a path resolved to a denylisted location
	// or could not be resolved at all. Nothing is written when returned.
	ErrPathRejected = errors.New("path rejected")

	// ErrSourceUnreadable indicates the source root cannot be enumerated.
	ErrSourceUnreadable = errors.New("source unreadable")

	// ErrNotConfirmed indicates a deploy was attempted without confirmation.
	ErrNotConfirmed = errors.New("deploy not confirmed")

	// ErrNoRuntimePath indicates the project has no runtime directory configured.
	ErrNoRuntimePath = errors.New("no runtime path configured")
)

// PathRejectedError describes why PathValidator refused a path.
// It wraps ErrPathRejected so callers can match with errors.Is.
type PathRejectedError struct {
	// Path is the offending path as given (or as resolved when resolution failed late).
	Path string

	// Entry is the denylist entry that matched. Empty when the path was
	// rejected for another reason (empty, unresolvable, filesystem root).
	Entry string

	// Reason is a short human-readable explanation.
	Reason string
}

// Error implements error.
func (e *PathRejectedError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("path rejected: %s: %s (%s)", e.Path, e.Reason, e.Entry)
	}
	return fmt.Sprintf("path rejected: %s: %s", e.Path, e.Reason)
}

// Unwrap returns ErrPathRejected.
func (e *PathRejectedError) Unwrap() error {
	return ErrPathRejected
}
