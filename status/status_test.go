package status

import (
	"context"
	"testing"
	"time"

	"github.com/voicecast/audioml/kv"
)

func fixedClock() func() time.Time {
	ts := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func newTestTracker() *Tracker {
	tracker := NewTracker(kv.NewMemory())
	tracker.now = fixedClock()
	return tracker
}

func TestUpdateAndGet(t *testing.T) {
	tracker := newTestTracker()
	ctx := context.Background()

	metadata := map[string]any{"dataset_key": "datasets/p1/dataset.msgpack"}
	if err := tracker.Update(ctx, "p1", Running, 0.3, "Extracting features", metadata); err != nil {
		t.Fatalf("Update: %v", err)
	}

	record, err := tracker.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record == nil {
		t.Fatal("record missing")
	}
	if record.PipelineID != "p1" || record.Status != Running || record.Progress != 0.3 {
		t.Errorf("record = %+v", record)
	}
	if record.Timestamp != "2026-03-15T10:30:00Z" {
		t.Errorf("timestamp = %q", record.Timestamp)
	}
	if record.Metadata["dataset_key"] != "datasets/p1/dataset.msgpack" {
		t.Errorf("metadata = %v", record.Metadata)
	}
}

func TestUpdateIdempotent(t *testing.T) {
	tracker := newTestTracker()
	ctx := context.Background()

	for _i := 0; _i < 3; _i++ {
		if err := tracker.Update(ctx, "p1", Completed, 1.0, "Done", nil); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}

	record, err := tracker.Get(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if record.Status != Completed || record.Progress != 1.0 || record.Message != "Done" {
		t.Errorf("record = %+v", record)
	}

	records, err := tracker.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("repeated updates produced %d records, want 1", len(records))
	}
}

func TestUpdateOverwrites(t *testing.T) {
	tracker := newTestTracker()
	ctx := context.Background()

	if err := tracker.Update(ctx, "p1", Running, 0.1, "Discovering input audio", nil); err != nil {
		t.Fatal(err)
	}
	if err := tracker.Update(ctx, "p1", Running, 0.7, "Augmenting dataset", nil); err != nil {
		t.Fatal(err)
	}

	record, err := tracker.Get(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if record.Progress != 0.7 || record.Message != "Augmenting dataset" {
		t.Errorf("record = %+v, want latest update", record)
	}
}

func TestUpdateValidation(t *testing.T) {
	tracker := newTestTracker()
	ctx := context.Background()

	if err := tracker.Update(ctx, "", Running, 0.5, "x", nil); err == nil {
		t.Error("expected error for empty pipeline id")
	}
	if err := tracker.Update(ctx, "p1", Running, -0.1, "x", nil); err == nil {
		t.Error("expected error for negative progress")
	}
	if err := tracker.Update(ctx, "p1", Running, 1.1, "x", nil); err == nil {
		t.Error("expected error for progress above 1")
	}
}

func TestGetUnknownPipeline(t *testing.T) {
	tracker := newTestTracker()

	record, err := tracker.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record != nil {
		t.Errorf("record = %+v, want nil for unknown pipeline", record)
	}
}

func TestListAll(t *testing.T) {
	tracker := newTestTracker()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		if err := tracker.Update(ctx, id, Pending, 0, "queued", nil); err != nil {
			t.Fatal(err)
		}
	}

	records, err := tracker.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	// Store listing is key-ordered
	for i, want := range []string{"a", "b", "c"} {
		if records[i].PipelineID != want {
			t.Errorf("records[%d].PipelineID = %q, want %q", i, records[i].PipelineID, want)
		}
	}
}

func TestPhaseTerminal(t *testing.T) {
	terminal := map[Phase]bool{
		Pending:   false,
		Running:   false,
		Completed: true,
		Failed:    true,
		Cancelled: true,
	}
	for phase, want := range terminal {
		if got := phase.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", phase, got, want)
		}
	}
}
