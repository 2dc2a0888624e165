// Package storage defines the flat key-value store every persisted store is
// saved to, and opens the backend selected by configuration.
package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage is closed")

// KV is a flat key-value store. Values are opaque bytes.
//
// Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys returns every key starting with prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Close releases the store.
	Close() error
}
