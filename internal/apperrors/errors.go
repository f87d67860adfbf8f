package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so that handlers and background jobs can
// decide how loudly to log it and what to tell the user.
type Kind string

const (
	// KindValidation marks malformed user input, rejected before any
	// network or store access.
	KindValidation Kind = "validation"
	// KindUpstream marks weather/geocoding provider failures: timeouts,
	// non-success statuses, empty or malformed payloads.
	KindUpstream Kind = "upstream"
	// KindStateIntegrity marks state reconstructed from a message's own
	// text or an expired cache entry that turned out to be unusable.
	KindStateIntegrity Kind = "state_integrity"
	// KindStore marks database/cache connection or write failures.
	KindStore Kind = "store"
	// KindInternal is everything else.
	KindInternal Kind = "internal"
)

// AppError carries a failure kind alongside the message and cause.
type AppError struct {
	Kind     Kind
	Message  string
	Internal error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *AppError) Unwrap() error {
	return e.Internal
}

// New creates an AppError without a cause.
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to an existing error.
func Wrap(err error, kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message, Internal: err}
}

// KindOf extracts the failure kind from an error chain. Errors that
// never passed through this package are reported as internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsValidation reports whether the error is a user-input problem that
// should be reported without being logged as severe.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}
