// Package storage provides blob storage for pipeline artifacts: raw audio,
// dataset artifacts and model artifacts. Implementations exist for the local
// filesystem and for Amazon S3 (or any S3-compatible store).
package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Download when the key does not exist.
var ErrNotExist = errors.New("storage: key does not exist")

// BlobStore is a narrow byte-oriented blob interface. Pipeline components
// depend on this rather than on any concrete client.
type BlobStore interface {
	// Upload stores data under key, overwriting any existing blob.
	Upload(ctx context.Context, key string, data []byte) error

	// Download returns the blob stored under key. Returns an error
	// wrapping ErrNotExist if the key does not exist.
	Download(ctx context.Context, key string) ([]byte, error)

	// Exists reports whether a blob exists under key.
	Exists(ctx context.Context, key string) (bool, error)

	// List returns the keys under the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
