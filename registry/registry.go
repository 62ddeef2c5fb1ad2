// Package registry hands trained models off to a model registry. The core
// pipeline depends only on the narrow Client interface; the blob-backed
// implementation records registrations next to the artifacts.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/voicecast/audioml/logging"
	"github.com/voicecast/audioml/storage"
	"github.com/voicecast/audioml/train"
)

// DefaultServingContainer is the serving image reference recorded with a
// registration when the caller does not override it.
const DefaultServingContainer = "voicecast/model-server:latest"

// ModelInfo describes one trained model being registered.
type ModelInfo struct {
	DisplayName      string        `json:"display_name"`
	ArtifactKey      string        `json:"artifact_key"`
	ServingContainer string        `json:"serving_container"`
	Metrics          train.Metrics `json:"metrics"`
}

// Client registers trained models.
type Client interface {
	Register(ctx context.Context, info ModelInfo) error
}

// BlobRegistry implements Client by writing a registration record into
// blob storage under a fixed prefix, one record per display name.
type BlobRegistry struct {
	blobs storage.BlobStore
}

// NewBlobRegistry creates a blob-backed registry client.
func NewBlobRegistry(blobs storage.BlobStore) *BlobRegistry {
	return &BlobRegistry{blobs: blobs}
}

// registration is the persisted record shape.
type registration struct {
	ModelInfo
	RegisteredAt string `json:"registered_at"` // RFC3339 UTC
}

// Register writes the registration record.
func (r *BlobRegistry) Register(ctx context.Context, info ModelInfo) error {
	logger := logging.WithFields(logging.Fields{
		"component":    "model_registry",
		"function":     "Register",
		"display_name": info.DisplayName,
	})

	if info.DisplayName == "" {
		return fmt.Errorf("empty model display name")
	}
	if info.ServingContainer == "" {
		info.ServingContainer = DefaultServingContainer
	}

	record := registration{
		ModelInfo:    info,
		RegisteredAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registration: %w", err)
	}

	key := "registry/" + info.DisplayName + ".json"
	if err := r.blobs.Upload(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write registration: %w", err)
	}

	logger.Info("Model registered", logging.Fields{
		"artifact_key":      info.ArtifactKey,
		"serving_container": info.ServingContainer,
	})
	return nil
}

// Compile-time interface check.
var _ Client = (*BlobRegistry)(nil)
