package handlers

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("resource not found")
	ErrTooLarge   = errors.New("payload too large")
	ErrInternal   = errors.New("internal server error")
)

// clientError pairs a sentinel with the message sent back to the client.
type clientError struct {
	kind    error
	message string
}

func (e *clientError) Error() string { return e.message }

func (e *clientError) Unwrap() error { return e.kind }

func newClientError(kind error, format string, args ...any) error {
	return &clientError{kind: kind, message: fmt.Sprintf(format, args...)}
}
