package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrCacheMiss is returned by cache-only lookups when the key is
	// absent.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheInconsistent is returned when a write the store just
	// acknowledged cannot be read back. It indicates a store defect and
	// retrying will not help.
	ErrCacheInconsistent = errors.New("cache dropped an acknowledged write")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassNetwork represents transport-level failures: DNS, dial,
	// TLS negotiation, timeouts, canceled contexts, body reads.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassProvider represents non-200 responses from the FRED API.
	ErrorClassProvider ErrorClass = "provider"

	// ErrorClassStorage represents cache backend failures.
	ErrorClassStorage ErrorClass = "storage"
)

// FredError represents a failed FRED request with additional context.
type FredError struct {
	StatusCode int // HTTP status for provider errors, zero otherwise
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *FredError) Error() string {
	if e.Err != nil {
		if e.Message != "" {
			return fmt.Sprintf("FRED %s error: %s: %v", e.Class, e.Message, e.Err)
		}
		return fmt.Sprintf("FRED %s error: %v", e.Class, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("FRED %s error (status %d): %s", e.Class, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("FRED %s error: %s", e.Class, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FredError) Unwrap() error {
	return e.Err
}
