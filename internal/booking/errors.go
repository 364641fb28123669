// Package booking implements the reservation engine: pricing,
// availability protection, the reservation state machine, the
// orchestrator that composes them inside one atomic unit of work,
// and the dispatcher that fires best-effort side effects after a
// successful commit. Storage, mail and messaging are reached
// through the interfaces in ports.go so the engine itself carries
// no driver code.
package booking

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error. Handlers map kinds to HTTP
// statuses in one place instead of matching on message strings.
type Kind string

const (
	KindValidation        Kind = "VALIDATION"         // malformed or missing input
	KindNotFound          Kind = "NOT_FOUND"          // entity absent or inactive
	KindSlotConflict      Kind = "SLOT_CONFLICT"      // venue/date/slot already taken
	KindInvalidTransition Kind = "INVALID_TRANSITION" // status change not allowed
	KindAlreadyCancelled  Kind = "ALREADY_CANCELLED"  // reservation no longer active
	KindForbidden         Kind = "FORBIDDEN"          // caller does not own the resource
	KindStillActive       Kind = "STILL_ACTIVE"       // hard delete requires prior soft delete
	KindDependency        Kind = "DEPENDENCY"         // storage or catalog unreachable
)

// Error is the one error type the engine returns. Every rejected
// command carries a stable Kind plus a human readable reason; a
// wrapped cause is attached when a collaborator failed underneath.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// NewError builds an engine error with a formatted message.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a cause to an engine error. Used mainly to
// turn storage failures into KindDependency without losing the
// original error chain.
func WrapError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from err, or empty string when err is
// not an engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is an engine error of the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }
