package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// ValidationError carries the field -> message map produced by a validator.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// PermissionError is returned when the actor lacks the required capability
// and is not the record owner.
type PermissionError struct {
	Capability string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("missing capability %s", e.Capability)
}

// DuplicateError is returned on unique-constraint violations, e.g. reusing
// a coupon code.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	if e.Field == "" {
		return "duplicate value"
	}
	return fmt.Sprintf("duplicate value for %s", e.Field)
}
