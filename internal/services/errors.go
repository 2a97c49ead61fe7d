package services

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when an operation needs a logged-in user and the session is empty.
	ErrUnauthenticated = errors.New("you need to be logged in")
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrStoreFailure wraps errors reported by the document store. It is never retried here.
	ErrStoreFailure = errors.New("storage is unavailable, try again")
)

// ValidationError describes a rejected input field with a message fit for the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func storeFailure(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreFailure, err)
}
