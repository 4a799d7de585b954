package ports

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KVStore.Get when the key was never written or was deleted.
var ErrNotFound = errors.New("key not found")

// Contract for the durable key-value store holding the station's local state.
// Values are opaque bytes; callers own the encoding.
type KVStore interface {
	// Return the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Durably store value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Remove key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
