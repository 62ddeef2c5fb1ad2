// Package status persists per-pipeline execution state so external observers
// can poll progress. One record per pipeline id, overwritten in place on
// every update.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/voicecast/audioml/kv"
	"github.com/voicecast/audioml/logging"
)

// Phase is the lifecycle state of a pipeline run.
type Phase string

const (
	Pending   Phase = "pending"
	Running   Phase = "running"
	Completed Phase = "completed"
	Failed    Phase = "failed"
	Cancelled Phase = "cancelled"
)

// Terminal reports whether a phase is final.
func (p Phase) Terminal() bool {
	return p == Completed || p == Failed || p == Cancelled
}

// Record is the persisted status of one pipeline run.
type Record struct {
	PipelineID string         `json:"pipeline_id"`
	Status     Phase          `json:"status"`
	Progress   float64        `json:"progress"` // 0.0 to 1.0
	Message    string         `json:"message"`
	Timestamp  string         `json:"timestamp"` // RFC3339 UTC
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// KeyPrefix is the key namespace for status records in the backing store.
const KeyPrefix = "pipeline_status/"

// Tracker persists status records to a key-value store.
type Tracker struct {
	store kv.Store

	// now is replaceable for deterministic timestamps in tests
	now func() time.Time
}

// NewTracker creates a Tracker over the given store.
func NewTracker(store kv.Store) *Tracker {
	return &Tracker{
		store: store,
		now:   time.Now,
	}
}

// Update overwrites the record for pipelineID. Repeated identical updates
// are safe. Progress monotonicity is the caller's responsibility.
func (t *Tracker) Update(ctx context.Context, pipelineID string, phase Phase, progress float64, message string, metadata map[string]any) error {
	logger := logging.WithFields(logging.Fields{
		"component":   "status_tracker",
		"function":    "Update",
		"pipeline_id": pipelineID,
	})

	if pipelineID == "" {
		return fmt.Errorf("empty pipeline id")
	}
	if progress < 0 || progress > 1 {
		return fmt.Errorf("progress %.3f out of range [0, 1]", progress)
	}

	record := Record{
		PipelineID: pipelineID,
		Status:     phase,
		Progress:   progress,
		Message:    message,
		Timestamp:  t.now().UTC().Format(time.RFC3339),
		Metadata:   metadata,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal status record: %w", err)
	}

	if err := t.store.Set(ctx, KeyPrefix+pipelineID, data); err != nil {
		logger.Error(err, "Failed to persist status record")
		return fmt.Errorf("failed to persist status for %s: %w", pipelineID, err)
	}

	logger.Debug("Status updated", logging.Fields{
		"status":   string(phase),
		"progress": progress,
		"message":  message,
	})

	return nil
}

// Get returns the record for pipelineID, or nil if none exists.
func (t *Tracker) Get(ctx context.Context, pipelineID string) (*Record, error) {
	data, err := t.store.Get(ctx, KeyPrefix+pipelineID)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read status for %s: %w", pipelineID, err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("corrupt status record for %s: %w", pipelineID, err)
	}
	return &record, nil
}

// ListAll returns every known status record, ordered by pipeline id. Used
// for dashboarding, not in the hot path.
func (t *Tracker) ListAll(ctx context.Context) ([]Record, error) {
	entries, err := t.store.List(ctx, KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list status records: %w", err)
	}

	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		var record Record
		if err := json.Unmarshal(entry.Value, &record); err != nil {
			return nil, fmt.Errorf("corrupt status record at %s: %w", entry.Key, err)
		}
		records = append(records, record)
	}
	return records, nil
}
