package store

import (
	"context"
	"errors"
)

// ErrNotFound indicates the requested key is absent from the store. Any
// other error returned by a Store is a storage failure, and callers are
// expected to fail closed rather than guess.
var ErrNotFound = errors.New("key not found")

// Store is a write-once persistent byte store keyed by raw bytes.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound when the
	// key is absent. The returned slice is the caller's to keep.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Contains reports whether key is present.
	Contains(ctx context.Context, key []byte) (bool, error)

	// PutIfAbsent stores value under key unless the key already exists,
	// in which case the call succeeds without touching the stored value.
	PutIfAbsent(ctx context.Context, key, value []byte) error
}
