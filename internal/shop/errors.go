package shop

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrPermission = errors.New("permission denied")
)

// ValidationError marks bad user input. The step that raised it re-prompts
// and does not advance.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError marks a failed store operation. Partial form progress
// cannot be trusted after one, so the active conversation state is destroyed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// DeliveryError marks a failed outbound chat send. Logged and reported,
// never retried.
type DeliveryError struct {
	Identity string
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to %s: %v", e.Identity, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
