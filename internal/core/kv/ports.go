package kv

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key is absent.
var ErrKeyNotFound = errors.New("key not found")

// Store is the key-value port the credential layer persists through.
// Implementations do no validation; callers own the shape of the values.
type Store interface {
	// Get retrieves a value by key. Returns ErrKeyNotFound when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value under the given key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a single key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every key owned by this store (logout wipes credentials).
	Clear(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}
