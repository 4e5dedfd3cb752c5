package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy of the messaging core. A push to a user with no live
// handles is not an error.
var (
	// ErrValidation rejects a request before anything is persisted: empty
	// content, self-messaging, unknown or regressing status.
	ErrValidation = errors.New("validation error")
	// ErrNotFound a status update referenced a nonexistent message.
	ErrNotFound = errors.New("not found")
	// ErrStore the persistence call failed; the whole operation fails and no
	// push is emitted.
	ErrStore = errors.New("store unavailable")
)

// Validationf wraps ErrValidation with detail.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

// Storef wraps a failed store call so callers can match on ErrStore.
func Storef(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStore, op, err)
}
