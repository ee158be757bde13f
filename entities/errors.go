package entities

import (
	"errors"
	"fmt"
)

// ErrNotFound reports an unknown agent or command on a query.
var ErrNotFound = errors.New("not found")

// ValidationError reports a missing required field. Nothing is stored when
// an operation fails with it.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s required", e.Field)
}

func Required(field string) error {
	return &ValidationError{Field: field}
}
