package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoLocationFound means the geocoder returned zero results for the query.
	ErrNoLocationFound = errors.New("no location found")
	// ErrInvalidQuery means the inbound query payload could not be used.
	ErrInvalidQuery = errors.New("invalid query")
)

// ProviderError is a network failure, non-success status, or malformed payload
// from a remote provider.
type ProviderError struct {
	Provider   string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// StoreError is a connection or query failure against the persistent store.
type StoreError struct {
	Op    string
	Table string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// CategoryError tags a failure with the category it came from.
type CategoryError struct {
	Category string
	Err      error
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

func (e *CategoryError) Unwrap() error { return e.Err }
