package core

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnavailable    = errors.New("resource unavailable")
)

// KioskError carries an HTTP-ish status code alongside a message.
type KioskError struct {
	Message string
	Code    int
	Err     error
}

func (e *KioskError) Error() string {
	return e.Message
}

func (e *KioskError) Unwrap() error {
	return e.Err
}

// NewNotFoundError builds a 404 error.
func NewNotFoundError(msg string) *KioskError {
	return &KioskError{Message: msg, Code: 404, Err: ErrNotFound}
}

// NewInvalidRequestError builds a 400 error.
func NewInvalidRequestError(msg string) *KioskError {
	return &KioskError{Message: msg, Code: 400, Err: ErrInvalidRequest}
}

// NewUnavailableError builds a 503 error.
func NewUnavailableError(msg string) *KioskError {
	return &KioskError{Message: msg, Code: 503, Err: ErrUnavailable}
}
