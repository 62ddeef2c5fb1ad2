package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeEmpty(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverAudioFiles(t *testing.T) {
	dir := t.TempDir()
	writeEmpty(t, filepath.Join(dir, "a.wav"))
	writeEmpty(t, filepath.Join(dir, "sub", "b.MP3"))
	writeEmpty(t, filepath.Join(dir, "sub", "c.flac"))
	writeEmpty(t, filepath.Join(dir, "notes.txt"))
	writeEmpty(t, filepath.Join(dir, "cover.jpg"))

	files, err := DiscoverAudioFiles(dir, 0, 0)
	if err != nil {
		t.Fatalf("DiscoverAudioFiles: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("found %d files, want 3: %v", len(files), files)
	}
	if !sort.StringsAreSorted(files) {
		t.Error("results must be sorted")
	}
}

func TestDiscoverAudioFilesCap(t *testing.T) {
	dir := t.TempDir()
	names := []string{"a.wav", "b.wav", "c.wav", "d.wav", "e.wav"}
	for _, name := range names {
		writeEmpty(t, filepath.Join(dir, name))
	}

	capped, err := DiscoverAudioFiles(dir, 3, 42)
	if err != nil {
		t.Fatalf("DiscoverAudioFiles: %v", err)
	}
	if len(capped) != 3 {
		t.Fatalf("capped to %d files, want 3", len(capped))
	}
	if !sort.StringsAreSorted(capped) {
		t.Error("capped sample must be sorted")
	}

	// Same seed gives the same sample
	again, err := DiscoverAudioFiles(dir, 3, 42)
	if err != nil {
		t.Fatal(err)
	}
	for i := range capped {
		if capped[i] != again[i] {
			t.Fatalf("sampling not deterministic: %v vs %v", capped, again)
		}
	}
}
