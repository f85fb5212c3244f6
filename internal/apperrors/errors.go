// Package apperrors defines the error kinds shared across services and
// mapped to HTTP status codes at the transport boundary.
package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a requested entity does not exist
	// (or has been soft-deleted).
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when an operation requires an acting
	// user and none was supplied.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the acting user lacks the role
	// required for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrDataIntegrity is returned when a persisted value cannot be
	// mapped back into the domain (e.g. unknown status symbol).
	ErrDataIntegrity = errors.New("data integrity violation")
)

// InvalidTransitionError is returned when a lifecycle operation is attempted
// outside its guarding source state. No mutation is performed.
type InvalidTransitionError struct {
	Operation     string
	CurrentStatus string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("operation %s not allowed in status %s", e.Operation, e.CurrentStatus)
}

// NewInvalidTransition builds an InvalidTransitionError.
func NewInvalidTransition(operation, currentStatus string) error {
	return &InvalidTransitionError{Operation: operation, CurrentStatus: currentStatus}
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}

// ValidationError carries per-field messages for bad input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidation builds a ValidationError with a single field message.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records an additional field message and returns the receiver.
func (e *ValidationError) Add(field, message string) *ValidationError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
	return e
}

// HasErrors reports whether any field message was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
