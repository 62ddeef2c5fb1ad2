// Package config loads and validates the pipeline configuration document.
// The struct is constructed once at startup, validated, and passed by
// reference into each stage; absent fields fall back to documented defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// Augmentation toggles the individual augmentation transforms.
type Augmentation struct {
	Enabled        bool `yaml:"enabled"`
	NoiseInjection bool `yaml:"noise_injection"`
	PitchShifting  bool `yaml:"pitch_shifting"`
	TimeStretching bool `yaml:"time_stretching"`
}

// DataProcessing configures audio loading and feature extraction.
type DataProcessing struct {
	BatchSize     int          `yaml:"batch_size"`    // Files per reporting batch (default: 32)
	Workers       int          `yaml:"workers"`       // Extraction worker pool size (default: 4)
	SampleRate    int          `yaml:"sample_rate"`   // Target sample rate (default: 22050)
	MaxDuration   float64      `yaml:"max_duration"`  // Seconds (default: 30)
	MinDuration   float64      `yaml:"min_duration"`  // Seconds (default: 1)
	Normalization bool         `yaml:"normalization"` // Peak normalization (default: true)
	Augmentation  Augmentation `yaml:"augmentation"`
}

// EarlyStopping configures validation-loss early stopping.
type EarlyStopping struct {
	Patience int    `yaml:"patience"` // Epochs without improvement (default: 5)
	Monitor  string `yaml:"monitor"`  // Monitored metric (default: val_loss)
}

// Checkpointing configures model checkpoint retention.
type Checkpointing struct {
	SaveBestOnly  bool `yaml:"save_best_only"` // (default: true)
	SaveFrequency int  `yaml:"save_frequency"` // Epochs between checkpoints (default: 1)
}

// Training configures the training loop.
type Training struct {
	ModelType       string        `yaml:"model_type"`       // mlp or transformer (default: mlp)
	Epochs          int           `yaml:"epochs"`           // (default: 50)
	LearningRate    float64       `yaml:"learning_rate"`    // (default: 0.001)
	BatchSize       int           `yaml:"batch_size"`       // (default: 32)
	ValidationSplit float64       `yaml:"validation_split"` // Held-out fraction (default: 0.2)
	EarlyStopping   EarlyStopping `yaml:"early_stopping"`
	Checkpointing   Checkpointing `yaml:"checkpointing"`
}

// Config is the validated pipeline configuration.
type Config struct {
	DataProcessing DataProcessing `yaml:"data_processing"`
	Training       Training       `yaml:"training"`
}

// Default returns the configuration with every field at its documented
// default.
func Default() *Config {
	return &Config{
		DataProcessing: DataProcessing{
			BatchSize:     32,
			Workers:       4,
			SampleRate:    22050,
			MaxDuration:   30.0,
			MinDuration:   1.0,
			Normalization: true,
			Augmentation: Augmentation{
				Enabled:        true,
				NoiseInjection: true,
				PitchShifting:  true,
				TimeStretching: true,
			},
		},
		Training: Training{
			ModelType:       "mlp",
			Epochs:          50,
			LearningRate:    0.001,
			BatchSize:       32,
			ValidationSplit: 0.2,
			EarlyStopping: EarlyStopping{
				Patience: 5,
				Monitor:  "val_loss",
			},
			Checkpointing: Checkpointing{
				SaveBestOnly:  true,
				SaveFrequency: 1,
			},
		},
	}
}

// Load reads a YAML configuration file, fills absent fields with defaults,
// and validates. A missing file is an error; callers wanting pure defaults
// use Default directly.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Write marshals the configuration to a YAML file, creating parent
// directories as needed. Used to emit a starter configuration document.
func Write(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Validate fails fast on malformed configuration before any stage launches.
func (c *Config) Validate() error {
	dp := c.DataProcessing
	if dp.SampleRate <= 0 {
		return fmt.Errorf("data_processing.sample_rate must be positive, got %d", dp.SampleRate)
	}
	if dp.Workers <= 0 {
		return fmt.Errorf("data_processing.workers must be positive, got %d", dp.Workers)
	}
	if dp.MinDuration <= 0 {
		return fmt.Errorf("data_processing.min_duration must be positive, got %g", dp.MinDuration)
	}
	if dp.MaxDuration <= dp.MinDuration {
		return fmt.Errorf("data_processing.max_duration (%g) must exceed min_duration (%g)", dp.MaxDuration, dp.MinDuration)
	}

	tr := c.Training
	switch tr.ModelType {
	case "mlp", "transformer":
	default:
		return fmt.Errorf("training.model_type must be mlp or transformer, got %q", tr.ModelType)
	}
	if tr.Epochs <= 0 {
		return fmt.Errorf("training.epochs must be positive, got %d", tr.Epochs)
	}
	if tr.LearningRate <= 0 {
		return fmt.Errorf("training.learning_rate must be positive, got %g", tr.LearningRate)
	}
	if tr.ValidationSplit <= 0 || tr.ValidationSplit >= 1 {
		return fmt.Errorf("training.validation_split must lie in (0, 1), got %g", tr.ValidationSplit)
	}
	if tr.EarlyStopping.Patience <= 0 {
		return fmt.Errorf("training.early_stopping.patience must be positive, got %d", tr.EarlyStopping.Patience)
	}
	if tr.EarlyStopping.Monitor != "val_loss" {
		return fmt.Errorf("training.early_stopping.monitor must be val_loss, got %q", tr.EarlyStopping.Monitor)
	}
	return nil
}
