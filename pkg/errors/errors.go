package errors

import (
	"errors"
	"fmt"
)

// Standard error types
var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrTransport     = errors.New("transport error")
	ErrParse         = errors.New("response parse error")
)

// ValidationError reports the first option that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is matches ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// TransportError wraps a failed round trip: network errors, non-2xx
// statuses and bodies that are not valid JSON.
type TransportError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Status     string
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		if e.Err != nil {
			return fmt.Sprintf("POST %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
		}
		return fmt.Sprintf("POST %s: HTTP %d: %s", e.URL, e.StatusCode, e.Status)
	}
	return fmt.Sprintf("POST %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is matches ErrTransport
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// ParseError wraps a failure raised by a response parser.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is matches ErrParse
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// WrapError wraps an error with a standard error type
func WrapError(err error, errType error, message string) error {
	return fmt.Errorf("%w: %s: %w", errType, message, err)
}

// New provides a convenience wrapper around errors.New
func New(text string) error {
	return errors.New(text)
}

// Is provides a convenience wrapper around errors.Is
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As provides a convenience wrapper around errors.As
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap provides a convenience wrapper around errors.Unwrap
func Unwrap(err error) error {
	return errors.Unwrap(err)
}
