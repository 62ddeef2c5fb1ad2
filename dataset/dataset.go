// Package dataset turns processed audio records into a train/validation
// dataset: deterministic augmentation fan-out, feature vectorization,
// standard scaling and a seeded stratified split.
package dataset

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/voicecast/audioml/augment"
	"github.com/voicecast/audioml/logging"
	"github.com/voicecast/audioml/preprocess"
)

// LabelFunc derives a class label from a processed record. Label semantics
// are deployment-specific, so the strategy is pluggable.
type LabelFunc func(record *preprocess.ProcessedRecord) string

// DirectoryLabelFunc labels a record by the name of its parent directory,
// falling back to "default" when the file has no meaningful parent.
func DirectoryLabelFunc(record *preprocess.ProcessedRecord) string {
	dir := filepath.Base(filepath.Dir(record.FilePath))
	if dir == "." || dir == "/" || dir == "" {
		return "default"
	}
	return dir
}

// ConstantLabelFunc labels every record with the same class.
func ConstantLabelFunc(label string) LabelFunc {
	return func(*preprocess.ProcessedRecord) string {
		return label
	}
}

// RecordMetadata is the per-row bookkeeping kept alongside the feature
// matrices.
type RecordMetadata struct {
	FilePath  string  `json:"file_path" msgpack:"file_path"`
	Duration  float64 `json:"duration" msgpack:"duration"`
	Augmented bool    `json:"augmented" msgpack:"augmented"`
	Label     string  `json:"label" msgpack:"label"`
}

// Stats summarizes an assembled dataset.
type Stats struct {
	TrainSamples int            `json:"train_samples" msgpack:"train_samples"`
	ValSamples   int            `json:"val_samples" msgpack:"val_samples"`
	FeatureDim   int            `json:"feature_dim" msgpack:"feature_dim"`
	NumClasses   int            `json:"num_classes" msgpack:"num_classes"`
	ClassCounts  map[string]int `json:"class_counts" msgpack:"class_counts"`
}

// Dataset is the assembled training artifact. Row counts of each feature
// matrix, label slice and metadata slice are equal per split.
type Dataset struct {
	XTrain    [][]float64      `msgpack:"x_train"`
	YTrain    []int            `msgpack:"y_train"`
	XVal      [][]float64      `msgpack:"x_val"`
	YVal      []int            `msgpack:"y_val"`
	TrainMeta []RecordMetadata `msgpack:"train_meta"`
	ValMeta   []RecordMetadata `msgpack:"val_meta"`

	Scaler       *StandardScaler `msgpack:"scaler"`
	FeatureNames []string        `msgpack:"feature_names"`
	LabelMapping map[string]int  `msgpack:"label_mapping"`
	Stats        Stats           `msgpack:"stats"`
}

// Params configures dataset assembly.
type Params struct {
	ValidationSplit float64 `json:"validation_split"` // Held-out fraction (default: 0.2)
	Seed            int64   `json:"seed"`             // Split RNG seed (default: 42)
	Augment         bool    `json:"augment"`          // Enable 3-way augmentation fan-out
}

// DefaultParams returns the standard assembly configuration.
func DefaultParams() Params {
	return Params{
		ValidationSplit: 0.2,
		Seed:            42,
		Augment:         true,
	}
}

// Assembler builds a Dataset from processed records.
type Assembler struct {
	params    Params
	pre       *preprocess.AudioPreprocessor
	augmenter *augment.DataAugmentation
	labelFunc LabelFunc
}

// NewAssembler creates an assembler. labelFunc may be nil, in which case
// labels derive from parent directory names.
func NewAssembler(params Params, pre *preprocess.AudioPreprocessor, augmenter *augment.DataAugmentation, labelFunc LabelFunc) *Assembler {
	if params.ValidationSplit <= 0 || params.ValidationSplit >= 1 {
		params.ValidationSplit = 0.2
	}
	if params.Seed == 0 {
		params.Seed = 42
	}
	if labelFunc == nil {
		labelFunc = DirectoryLabelFunc
	}
	return &Assembler{
		params:    params,
		pre:       pre,
		augmenter: augmenter,
		labelFunc: labelFunc,
	}
}

// Augment expands each record into itself plus three deterministic variants
// (noise, stretch, pitch), each with an independently recomputed feature
// bundle. Pass-through when augmentation is disabled.
func (a *Assembler) Augment(records []*preprocess.ProcessedRecord) []*preprocess.ProcessedRecord {
	if !a.params.Augment {
		return records
	}

	logger := logging.WithFields(logging.Fields{
		"component": "dataset_assembler",
		"function":  "Augment",
		"records":   len(records),
	})

	out := make([]*preprocess.ProcessedRecord, 0, len(records)*4)

	for _, record := range records {
		out = append(out, record)

		for _, variant := range a.augmenter.Variants(record.Audio) {
			augmented, err := a.buildVariant(record, variant.Audio)
			if err != nil {
				// Augmentation never fails the batch
				logger.Warn("Skipping augmentation variant", logging.Fields{
					"file_path": record.FilePath,
					"variant":   string(variant.Variant),
					"error":     err.Error(),
				})
				continue
			}
			out = append(out, augmented)
		}
	}

	logger.Debug("Augmentation fan-out complete", logging.Fields{
		"output_records": len(out),
	})

	return out
}

// buildVariant refits a perturbed waveform to the fixed target length and
// re-extracts its feature bundle.
func (a *Assembler) buildVariant(source *preprocess.ProcessedRecord, audio []float64) (*preprocess.ProcessedRecord, error) {
	sample := &preprocess.AudioSample{
		PCM:        audio,
		SampleRate: source.SampleRate,
		Source:     source.FilePath,
	}
	a.pre.FitLength(sample, a.pre.TargetLength())

	features, err := a.pre.ExtractFeatures(sample)
	if err != nil {
		return nil, fmt.Errorf("failed to extract features for variant: %w", err)
	}

	return &preprocess.ProcessedRecord{
		FilePath:   source.FilePath,
		Audio:      sample.PCM,
		SampleRate: source.SampleRate,
		Duration:   source.Duration,
		Features:   features,
		Augmented:  true,
	}, nil
}

// Assemble vectorizes all records, derives integer labels, fits the scaler
// on the full set, and performs the stratified train/validation split.
func (a *Assembler) Assemble(records []*preprocess.ProcessedRecord) (*Dataset, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "dataset_assembler",
		"function":  "Assemble",
		"records":   len(records),
	})

	if len(records) == 0 {
		return nil, fmt.Errorf("no records to assemble")
	}

	vectors := make([][]float64, len(records))
	labels := make([]string, len(records))
	meta := make([]RecordMetadata, len(records))

	for i, record := range records {
		vector, err := Vectorize(record.Features)
		if err != nil {
			return nil, fmt.Errorf("failed to vectorize %s: %w", record.FilePath, err)
		}
		if i > 0 && len(vector) != len(vectors[0]) {
			return nil, fmt.Errorf("inconsistent vector length for %s: got %d, want %d",
				record.FilePath, len(vector), len(vectors[0]))
		}
		vectors[i] = vector
		labels[i] = a.labelFunc(record)
		meta[i] = RecordMetadata{
			FilePath:  record.FilePath,
			Duration:  record.Duration,
			Augmented: record.Augmented,
			Label:     labels[i],
		}
	}

	labelMapping := buildLabelMapping(labels)
	y := make([]int, len(labels))
	for i, label := range labels {
		y[i] = labelMapping[label]
	}

	scaler := NewStandardScaler()
	scaler.Fit(vectors)
	scaled := scaler.Transform(vectors)

	trainIdx, valIdx, err := StratifiedSplit(y, a.params.ValidationSplit, a.params.Seed)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Scaler:       scaler,
		FeatureNames: FeatureNames(),
		LabelMapping: labelMapping,
	}
	for _, i := range trainIdx {
		ds.XTrain = append(ds.XTrain, scaled[i])
		ds.YTrain = append(ds.YTrain, y[i])
		ds.TrainMeta = append(ds.TrainMeta, meta[i])
	}
	for _, i := range valIdx {
		ds.XVal = append(ds.XVal, scaled[i])
		ds.YVal = append(ds.YVal, y[i])
		ds.ValMeta = append(ds.ValMeta, meta[i])
	}

	classCounts := make(map[string]int)
	for _, label := range labels {
		classCounts[label]++
	}
	ds.Stats = Stats{
		TrainSamples: len(ds.XTrain),
		ValSamples:   len(ds.XVal),
		FeatureDim:   len(vectors[0]),
		NumClasses:   len(labelMapping),
		ClassCounts:  classCounts,
	}

	logger.Debug("Dataset assembled", logging.Fields{
		"train_samples": ds.Stats.TrainSamples,
		"val_samples":   ds.Stats.ValSamples,
		"feature_dim":   ds.Stats.FeatureDim,
		"num_classes":   ds.Stats.NumClasses,
	})

	return ds, nil
}

// buildLabelMapping assigns integer ids to labels in sorted order so the
// mapping is reproducible.
func buildLabelMapping(labels []string) map[string]int {
	unique := make(map[string]struct{})
	for _, label := range labels {
		unique[label] = struct{}{}
	}
	names := make([]string, 0, len(unique))
	for name := range unique {
		names = append(names, name)
	}
	sort.Strings(names)

	mapping := make(map[string]int, len(names))
	for i, name := range names {
		mapping[name] = i
	}
	return mapping
}
