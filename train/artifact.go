package train

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ModelArtifact is the opaque serialized model blob: parameters,
// configuration and final metrics.
type ModelArtifact struct {
	Weights    [][]float64 `msgpack:"weights"`
	Bias       []float64   `msgpack:"bias"`
	FeatureDim int         `msgpack:"feature_dim"`
	NumClasses int         `msgpack:"num_classes"`
	Params     Params      `msgpack:"params"`
	Metrics    Metrics     `msgpack:"metrics"`
}

// EncodeModelArtifact serializes a model artifact.
func EncodeModelArtifact(artifact *ModelArtifact) ([]byte, error) {
	data, err := msgpack.Marshal(artifact)
	if err != nil {
		return nil, fmt.Errorf("failed to encode model artifact: %w", err)
	}
	return data, nil
}

// DecodeModelArtifact deserializes a model artifact blob.
func DecodeModelArtifact(data []byte) (*ModelArtifact, error) {
	var artifact ModelArtifact
	if err := msgpack.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact: %w", err)
	}
	return &artifact, nil
}

// EncodeHistory serializes per-epoch training history as JSON, persisted
// next to the model artifact.
func EncodeHistory(history []EpochMetrics) ([]byte, error) {
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode training history: %w", err)
	}
	return data, nil
}
