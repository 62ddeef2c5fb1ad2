package registry

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/voicecast/audioml/storage"
	"github.com/voicecast/audioml/train"
)

func TestRegister(t *testing.T) {
	blobs, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	reg := NewBlobRegistry(blobs)
	ctx := context.Background()

	info := ModelInfo{
		DisplayName: "voicecast-ml-model-p1",
		ArtifactKey: "models/p1/model.msgpack",
		Metrics:     train.Metrics{Accuracy: 0.9},
	}
	if err := reg.Register(ctx, info); err != nil {
		t.Fatalf("Register: %v", err)
	}

	data, err := blobs.Download(ctx, "registry/voicecast-ml-model-p1.json")
	if err != nil {
		t.Fatalf("registration record missing: %v", err)
	}

	var record struct {
		ModelInfo
		RegisteredAt string `json:"registered_at"`
	}
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("record unparseable: %v", err)
	}
	if record.ArtifactKey != info.ArtifactKey {
		t.Errorf("artifact key = %q", record.ArtifactKey)
	}
	if record.ServingContainer != DefaultServingContainer {
		t.Errorf("serving container = %q, want default", record.ServingContainer)
	}
	if record.Metrics.Accuracy != 0.9 {
		t.Errorf("metrics = %+v", record.Metrics)
	}
	if record.RegisteredAt == "" {
		t.Error("registration must carry a timestamp")
	}
}

func TestRegisterEmptyName(t *testing.T) {
	blobs, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	reg := NewBlobRegistry(blobs)

	if err := reg.Register(context.Background(), ModelInfo{}); err == nil {
		t.Error("expected error for empty display name")
	}
}
