// Package apperrors defines the error kinds surfaced by the service layer
// and their mapping to HTTP status codes.
package apperrors

import (
	"errors"
	"net/http"
)

// Error kinds. Match them with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("authentication error")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage error")
	ErrUnexpected = errors.New("unexpected error")
)

// Error carries a user-facing message together with its kind and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Validation reports bad or missing input.
func Validation(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

// Auth reports bad credentials or an invalid token.
func Auth(message string) error {
	return &Error{Kind: ErrAuth, Message: message}
}

// NotFound reports a missing record.
func NotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// Storage reports an asset store failure.
func Storage(message string, err error) error {
	return &Error{Kind: ErrStorage, Message: message, Err: err}
}

// Unexpected wraps any other failure, e.g. a database error.
func Unexpected(message string, err error) error {
	return &Error{Kind: ErrUnexpected, Message: message, Err: err}
}

// StatusCode maps an error to its HTTP status code.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing message of err.
// Errors that did not originate from this package get a generic message.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Server Error"
}

// Cause returns the wrapped cause of err, if any.
func Cause(err error) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Err
	}
	return err
}
