// Package errs holds the typed errors the HTTP surface maps to status codes.
package errs

import (
	"github.com/dlovans/tagform/pkg/form"
)

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

// FormError carries a validation error tree back to the client.
type FormError struct {
	ErrorMessage
	Fields *form.Error
}

// ConflictError reports a request the current framework state forbids,
// such as a rule on a widget that already has children.
type ConflictError struct {
	ErrorMessage
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewFormError(fields *form.Error) *FormError {
	return &FormError{
		ErrorMessage: ErrorMessage{Message: "validation failed"},
		Fields:       fields,
	}
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}
