// Package kv provides a minimal key-value store abstraction used for
// pipeline status persistence. Keys are flat strings; callers namespace
// them with a path-style prefix such as "pipeline_status/".
//
// A BadgerDB-backed implementation is provided for durable local storage
// and an in-memory implementation for testing.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("kv: not found")

// Entry is a key-value pair returned by List.
type Entry struct {
	Key   string
	Value []byte
}

// Store is the interface for a flat key-value blob store.
type Store interface {
	// Get retrieves the value for a key. Returns ErrNotFound if not present.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a key-value pair, overwriting any existing value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a key. No error if the key does not exist.
	Delete(ctx context.Context, key string) error

	// List returns all entries whose key starts with prefix, in
	// lexicographic key order.
	List(ctx context.Context, prefix string) ([]Entry, error)

	// Close releases any resources held by the store.
	Close() error
}
