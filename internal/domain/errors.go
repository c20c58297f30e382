package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrConflict            = errors.New("resource conflict")
	ErrProvider            = errors.New("provider error")
)

// Error pairs a sentinel with a client-facing message. Handlers map the
// sentinel to an HTTP status and serialize the message.
type Error struct {
	Err     error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound returns a not-found error with a client-facing message.
func NotFound(message string) *Error {
	return &Error{Err: ErrNotFound, Message: message}
}

// Invalid returns a bad-input error with a client-facing message.
func Invalid(message string) *Error {
	return &Error{Err: ErrInvalidInput, Message: message}
}

// Provider returns an error relaying a failure reported by an external
// provider.
func Provider(message string) *Error {
	return &Error{Err: ErrProvider, Message: message}
}

// ValidationError represents a field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
