// Package apperr defines the error kinds surfaced to API clients.
// Domain packages wrap these kinds so the transport layer can map them
// to HTTP status codes with errors.Is.
package apperr

import (
	"errors"
	"maps"
)

// Error kinds. Each one maps to exactly one HTTP status code.
var (
	// ErrValidation indicates a malformed, missing or duplicate field (400).
	ErrValidation = errors.New("validation error")

	// ErrAuthentication indicates missing or invalid credentials (401).
	ErrAuthentication = errors.New("authentication error")

	// ErrNotFound indicates a missing resource, or one not owned by the caller (404).
	ErrNotFound = errors.New("not found")

	// ErrMethodNotAllowed indicates an unsupported verb on an endpoint (405).
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// Error is a client-facing error of a given kind.
// Fields optionally carries per-field messages keyed by JSON field name.
type Error struct {
	kind    error
	Message string
	Fields  map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the kind so errors.Is(err, ErrValidation) works.
func (e *Error) Unwrap() error {
	return e.kind
}

// Kind returns the kind sentinel of the error.
func (e *Error) Kind() error {
	return e.kind
}

// New creates an error of the given kind.
func New(kind error, message string) *Error {
	return &Error{kind: kind, Message: message}
}

// Validation creates a validation error with optional field details.
func Validation(message string, fields map[string]string) *Error {
	return &Error{kind: ErrValidation, Message: message, Fields: maps.Clone(fields)}
}

// FieldValidation creates a validation error for a single field.
func FieldValidation(field, message string) *Error {
	return &Error{kind: ErrValidation, Message: message, Fields: map[string]string{field: message}}
}

// Authentication creates an authentication error.
func Authentication(message string) *Error {
	return New(ErrAuthentication, message)
}

// NotFound creates a not-found error.
func NotFound(message string) *Error {
	return New(ErrNotFound, message)
}

// Details extracts the field messages from err, if any.
func Details(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
