package models

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a status change is not allowed by the lifecycle
var ErrInvalidTransition = errors.New("invalid status transition")

// ValidationError reports a field that failed validation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func transitionError(kind string, from, to string) error {
	return fmt.Errorf("%w: %s cannot move from %q to %q", ErrInvalidTransition, kind, from, to)
}
