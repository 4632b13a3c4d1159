// Package storage persists preprocessing material, keyed by namespace and a
// numeric identifier such as a gate id.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get for a missing key.
	ErrNotFound = errors.New("storage: not found")
	// ErrExists is returned by Put for a key that is already stored.
	ErrExists = errors.New("storage: key already exists")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("storage: closed")
)

// Store is a write-once key value store. Implementations are safe for concurrent use.
type Store interface {
	// Put encodes v and stores it under (namespace, key).
	Put(ctx context.Context, namespace string, key uint64, v interface{}) error
	// Get decodes the value under (namespace, key) into out.
	Get(ctx context.Context, namespace string, key uint64, out interface{}) error
	// Keys returns the keys of a namespace in ascending order.
	Keys(ctx context.Context, namespace string) ([]uint64, error)
	Close() error
}
