package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.DataProcessing.SampleRate != 22050 {
		t.Errorf("sample_rate = %d, want 22050", cfg.DataProcessing.SampleRate)
	}
	if cfg.DataProcessing.Workers != 4 {
		t.Errorf("workers = %d, want 4", cfg.DataProcessing.Workers)
	}
	if cfg.DataProcessing.MinDuration != 1.0 || cfg.DataProcessing.MaxDuration != 30.0 {
		t.Errorf("durations = %g..%g, want 1..30", cfg.DataProcessing.MinDuration, cfg.DataProcessing.MaxDuration)
	}
	if !cfg.DataProcessing.Normalization {
		t.Error("normalization must default on")
	}
	if !cfg.DataProcessing.Augmentation.Enabled {
		t.Error("augmentation must default on")
	}
	if cfg.Training.ModelType != "mlp" {
		t.Errorf("model_type = %q, want mlp", cfg.Training.ModelType)
	}
	if cfg.Training.Epochs != 50 || cfg.Training.LearningRate != 0.001 {
		t.Errorf("training = %d epochs at %g", cfg.Training.Epochs, cfg.Training.LearningRate)
	}
	if cfg.Training.EarlyStopping.Monitor != "val_loss" {
		t.Errorf("monitor = %q", cfg.Training.EarlyStopping.Monitor)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
data_processing:
  sample_rate: 16000
  workers: 8
training:
  epochs: 10
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DataProcessing.SampleRate != 16000 {
		t.Errorf("sample_rate = %d, want override 16000", cfg.DataProcessing.SampleRate)
	}
	if cfg.DataProcessing.Workers != 8 {
		t.Errorf("workers = %d, want override 8", cfg.DataProcessing.Workers)
	}
	if cfg.Training.Epochs != 10 {
		t.Errorf("epochs = %d, want override 10", cfg.Training.Epochs)
	}
	// Untouched fields keep their defaults
	if cfg.DataProcessing.MaxDuration != 30.0 {
		t.Errorf("max_duration = %g, want default 30", cfg.DataProcessing.MaxDuration)
	}
	if cfg.Training.LearningRate != 0.001 {
		t.Errorf("learning_rate = %g, want default", cfg.Training.LearningRate)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
training:
  model_type: cnn
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "model_type") {
		t.Errorf("error = %v, want model_type cause", err)
	}
}

func TestValidate(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero sample rate", func(c *Config) { c.DataProcessing.SampleRate = 0 }},
		{"zero workers", func(c *Config) { c.DataProcessing.Workers = 0 }},
		{"zero min duration", func(c *Config) { c.DataProcessing.MinDuration = 0 }},
		{"max below min", func(c *Config) { c.DataProcessing.MaxDuration = 0.5 }},
		{"bad model type", func(c *Config) { c.Training.ModelType = "cnn" }},
		{"zero epochs", func(c *Config) { c.Training.Epochs = 0 }},
		{"zero learning rate", func(c *Config) { c.Training.LearningRate = 0 }},
		{"split at 1", func(c *Config) { c.Training.ValidationSplit = 1 }},
		{"zero patience", func(c *Config) { c.Training.EarlyStopping.Patience = 0 }},
		{"wrong monitor", func(c *Config) { c.Training.EarlyStopping.Monitor = "accuracy" }},
	}
	for _, m := range mutations {
		cfg := Default()
		m.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", m.name)
		}
	}

	// Transformer is an accepted model type
	cfg := Default()
	cfg.Training.ModelType = "transformer"
	if err := cfg.Validate(); err != nil {
		t.Errorf("transformer must validate: %v", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := Write(path, Default()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataProcessing.SampleRate != 22050 || cfg.Training.Epochs != 50 {
		t.Errorf("round trip lost values: %+v", cfg)
	}
}
