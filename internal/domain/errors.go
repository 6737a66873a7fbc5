package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error for transport mapping.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindForbidden    ErrorKind = "forbidden"
	KindUnauthorized ErrorKind = "unauthorized"
	KindInvalidState ErrorKind = "invalid_state"
)

// Error is a domain-level error carrying a kind and a client-safe message.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error returns the client-safe message.
func (e *Error) Error() string {
	return e.Message
}

// NewValidationError creates an error for invalid client input.
func NewValidationError(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewNotFoundError creates an error for a missing resource.
func NewNotFoundError(resource, id string) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", resource, id)}
}

// NewConflictError creates an error for a state conflict (e.g. concurrent update).
func NewConflictError(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewForbiddenError creates an error for an action the caller may not perform.
func NewForbiddenError(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NewUnauthorizedError creates an error for missing or invalid credentials.
func NewUnauthorizedError(message string) error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NewInvalidStateError creates an error for an illegal state transition.
func NewInvalidStateError(from, to string) error {
	return &Error{
		Kind:    KindInvalidState,
		Message: fmt.Sprintf("illegal status transition from %s to %s", from, to),
	}
}

// KindOf returns the error kind if err is (or wraps) a domain error.
func KindOf(err error) (ErrorKind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// IsNotFound reports whether err is a not-found domain error.
func IsNotFound(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindNotFound
}
