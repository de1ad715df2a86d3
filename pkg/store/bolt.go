package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const boltFileName = "fred.db"

var responsesBucket = []byte("responses")

// Bolt is a Store backed by a single-file bbolt database. It is the
// default backend: one process, one directory, no external services.
type Bolt struct {
	db *bbolt.DB
}

// OpenBolt opens the cache database inside dir, creating the directory
// and the database as needed. The database file is locked for the life
// of the store; call Close to release it.
func OpenBolt(dir string) (*Bolt, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	path := filepath.Join(filepath.Clean(dir), boltFileName)
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(responsesBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create responses bucket: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Close closes the underlying database and releases its file lock.
func (b *Bolt) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Get returns the value stored under key, or ErrNotFound.
func (b *Bolt) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(responsesBucket).Get(key)
		if data == nil {
			return ErrNotFound
		}
		// data is only valid inside the transaction.
		value = make([]byte, len(data))
		copy(value, data)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			CacheMisses.WithLabelValues(backendBolt).Inc()
			return nil, ErrNotFound
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("bolt get: %w", err)
	}

	CacheHits.WithLabelValues(backendBolt).Inc()
	return value, nil
}

// Contains reports whether key is present.
func (b *Bolt) Contains(ctx context.Context, key []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var found bool
	err := b.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(responsesBucket).Get(key) != nil
		return nil
	})
	if err != nil {
		CacheErrors.WithLabelValues("contains").Inc()
		return false, fmt.Errorf("bolt contains: %w", err)
	}

	return found, nil
}

// PutIfAbsent stores value under key unless the key already exists. The
// presence check and the write share one transaction, so concurrent
// writers cannot interleave between them.
func (b *Bolt) PutIfAbsent(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var wrote bool
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(responsesBucket)
		if bucket.Get(key) != nil {
			return nil
		}
		wrote = true
		return bucket.Put(key, value)
	})
	if err != nil {
		CacheErrors.WithLabelValues("put").Inc()
		return fmt.Errorf("bolt put: %w", err)
	}

	if wrote {
		CacheStoredBytes.WithLabelValues(backendBolt).Add(float64(len(value)))
	}
	return nil
}
