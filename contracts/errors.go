package contracts

import (
	"errors"
	"fmt"
)

// ErrInvalidEvent is matched by every ValidationError
var ErrInvalidEvent = errors.New("invalid event")

// ValidationError names the field that made an event invalid
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid event: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid event: %s is required", e.Field)
}

// Unwrap returns the underlying error
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInvalidEvent) work
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidEvent
}
