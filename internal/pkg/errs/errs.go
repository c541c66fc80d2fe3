package errs

import (
	"errors"
	"fmt"
)

// ModelNotFoundError signals that no latest model version is registered for a
// category. Maps to a not-found condition at the API boundary.
type ModelNotFoundError struct {
	CategoryID string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("no latest model version registered for category %q", e.CategoryID)
}

// ModelLoadError signals that a model artifact could not be loaded. Missing
// and Corrupt are distinct reported reasons; both map to a server condition.
type ModelLoadError struct {
	Path   string
	Reason string // "missing" or "corrupt"
	Err    error
}

func (e *ModelLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model artifact %s at %q: %v", e.Reason, e.Path, e.Err)
	}
	return fmt.Sprintf("model artifact %s at %q", e.Reason, e.Path)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// ValidationError signals bad caller input (granularity, horizon, period).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError signals a transaction that could not commit.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func IsModelNotFound(err error) bool {
	var target *ModelNotFoundError
	return errors.As(err, &target)
}

func IsModelLoad(err error) bool {
	var target *ModelLoadError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsPersistence(err error) bool {
	var target *PersistenceError
	return errors.As(err, &target)
}
