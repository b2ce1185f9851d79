package types

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers missing records, missing attachments, and records
	// owned by someone else. Callers must not be able to tell those apart.
	ErrNotFound = errors.New("not found")

	ErrDuplicateUsername = errors.New("username already taken")

	// ErrInvalidCredentials is returned for unknown usernames and wrong
	// passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a rejected input field. The core returns these;
// the presentation layer turns them into user-facing messages.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AsValidation unwraps err into a ValidationError, or returns nil.
func AsValidation(err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
