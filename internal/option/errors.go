package option

import (
	"errors"
	"fmt"
)

// Errors returned by option operations.
var (
	// ErrOptionNotFound indicates a read-only lookup found no scope declaring the option.
	ErrOptionNotFound = errors.New("option not found")

	// ErrTypeMismatch indicates the stored value cannot be read as the requested type.
	ErrTypeMismatch = errors.New("type mismatch")
)

// NotFoundError is returned by Manager.Get when no scope in the chain
// declares the requested option.
type NotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("option not found: %s", e.Name)
}

// Is implements error matching for NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrOptionNotFound
}

// TypeError is returned when a typed accessor cannot convert a value.
type TypeError struct {
	// Expected is the expected type name.
	Expected string
	// Actual is the actual type name.
	Actual string
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("option type error: expected %s, got %s", e.Expected, e.Actual)
}

// Is implements error matching for TypeError.
func (e *TypeError) Is(target error) bool {
	return target == ErrTypeMismatch
}
