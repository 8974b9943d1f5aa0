// Package domain holds the shared kernel used by the order and payment
// services: money, typed identifiers, status enums, error kinds and the clock.
package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers select behaviour with errors.Is.
var (
	// ErrInvariant marks bad input or an illegal state transition. It is
	// surfaced to synchronous callers and never swallowed.
	ErrInvariant = errors.New("domain invariant violated")

	// ErrNotFound marks a missing aggregate.
	ErrNotFound = errors.New("not found")

	// ErrConcurrentModification is returned when a save loses a version check
	// or a message's effect has already been applied by another delivery.
	ErrConcurrentModification = errors.New("concurrent modification")
)

// Error carries the exact human-readable message and unwraps to its kind.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// NewError returns an ErrInvariant error with the given message.
func NewError(msg string) error {
	return &Error{kind: ErrInvariant, msg: msg}
}

// Errorf returns an ErrInvariant error with a formatted message.
func Errorf(format string, args ...any) error {
	return &Error{kind: ErrInvariant, msg: fmt.Sprintf(format, args...)}
}

// NotFoundf returns an ErrNotFound error with a formatted message.
func NotFoundf(format string, args ...any) error {
	return &Error{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}
