package tasks

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is; use errors.As with the typed
// errors below for details.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("task not found")
	ErrPersistence = errors.New("persistence failed")
)

// ValidationError rejects a create or update whose field is empty after
// trimming. The collection is left unchanged.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must not be empty", e.Field)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports an operation on an ID that is not in the collection.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %s not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// PersistenceError reports a failed read or write of the stored
// collection. It never undoes an in-memory change.
type PersistenceError struct {
	Op  string // "read" or "write"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
