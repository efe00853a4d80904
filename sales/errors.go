/*
errors.go - Centralized error types for the sales domain

PURPOSE:
  All error types in one place for consistency and discoverability.
  The API layer maps them to HTTP status codes with the helpers below.

ERROR CATEGORIES:
  1. Selection errors - unknown chain, capacity, column or selection kind
  2. Session errors - missing session state
  3. Dataset errors - nothing to work with

SEE ALSO:
  - reconcile.go: Returns selection errors
  - store.go: Returns session errors
  - api/handlers.go: Maps errors to status codes
*/
package sales

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownChain is returned when a chain is not present in the dataset.
	ErrUnknownChain = errors.New("unknown chain")

	// ErrUnknownCapacity is returned when a capacity is not present in the dataset.
	ErrUnknownCapacity = errors.New("unknown capacity")

	// ErrUnknownColumn is returned when a visible column name is not recognised.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrInvalidSelection is returned for an empty token or an unknown selection kind.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrSessionNotFound is returned when a session id has no stored state.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists is returned when creating a session whose id is taken.
	ErrSessionExists = errors.New("session already exists")

	// ErrEmptyDataset is returned when a dataset holds no records.
	ErrEmptyDataset = errors.New("dataset is empty")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValueError reports which value was rejected.
type ValueError struct {
	Field string
	Value string
	Err   error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnknownChain) ||
		errors.Is(err, ErrUnknownCapacity) ||
		errors.Is(err, ErrUnknownColumn) ||
		errors.Is(err, ErrInvalidSelection)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}
