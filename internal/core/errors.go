package core

import (
	"errors"
)

var (
	ErrEmptyCollection    = errors.New("collection has no images")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrImageNotFound      = errors.New("image not found")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrMissingMetadata    = errors.New("missing image metadata")
	ErrNoFiles            = errors.New("no files uploaded")
)

// ValidationError carries the message shown to the user in place of the
// rejected action.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(message string, err error) *ValidationError {
	return &ValidationError{Message: message, Err: err}
}

// UserMessage returns the user-facing message of a ValidationError anywhere
// in err's chain.
func UserMessage(err error) (string, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message, true
	}
	return "", false
}
