package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is zero or negative.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyTitle is returned when a task or route has no title.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrInvalidStatus is returned for a presence status outside UserStatus.
	ErrInvalidStatus = errors.New("invalid user status")

	// ErrInvalidMessageType is returned for an unknown MessageType.
	ErrInvalidMessageType = errors.New("invalid message type")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError reports an invalid input field. It unwraps to the
// underlying sentinel so callers can still match ErrValidation or ErrInvalidID.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Field, e.Message, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
