// Package preprocess loads raw audio, validates and normalizes it, enforces
// fixed-length framing, and extracts the acoustic feature bundle used for
// dataset assembly.
package preprocess

import (
	"fmt"
	"math"

	"github.com/voicecast/audioml/logging"
	"github.com/voicecast/audioml/transcode"
)

// AudioSample is a loaded mono waveform. After Normalize all amplitudes lie
// in [-1, 1].
type AudioSample struct {
	PCM        []float64
	SampleRate int
	Source     string
}

// Duration returns the sample duration in seconds.
func (s *AudioSample) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.PCM)) / float64(s.SampleRate)
}

// ProcessedRecord is the result of fully processing one input file, or one
// augmentation variant of it.
type ProcessedRecord struct {
	FilePath   string         `json:"file_path"`
	Audio      []float64      `json:"-"`
	SampleRate int            `json:"sample_rate"`
	Duration   float64        `json:"duration"`
	Features   *FeatureBundle `json:"-"`
	Augmented  bool           `json:"augmented"`
}

// Loader decodes an audio file into a mono waveform at the target rate.
// The production implementation shells out to FFmpeg; tests substitute
// synthetic waveforms.
type Loader interface {
	Load(path string) (*transcode.AudioData, error)
}

// decoderLoader adapts transcode.Decoder to the Loader interface.
type decoderLoader struct {
	decoder *transcode.Decoder
}

func (dl *decoderLoader) Load(path string) (*transcode.AudioData, error) {
	return dl.decoder.DecodeFile(path)
}

// Params configures the preprocessor.
type Params struct {
	SampleRate  int     `json:"sample_rate"`  // Target sample rate (default: 22050)
	WindowSize  int     `json:"window_size"`  // FFT window size (default: 2048)
	HopSize     int     `json:"hop_size"`     // Hop between frames (default: 512)
	NumMels     int     `json:"num_mels"`     // Mel bands (default: 80)
	NumMFCC     int     `json:"num_mfcc"`     // MFCC coefficients (default: 13)
	MinDuration float64 `json:"min_duration"` // Minimum accepted duration in seconds (default: 1)
	MaxDuration float64 `json:"max_duration"` // Maximum accepted duration in seconds (default: 30)
	Normalize   bool    `json:"normalize"`    // Peak-normalize amplitude (default: true via DefaultParams)
}

// DefaultParams returns the standard preprocessing configuration.
func DefaultParams() Params {
	return Params{
		SampleRate:  22050,
		WindowSize:  2048,
		HopSize:     512,
		NumMels:     80,
		NumMFCC:     13,
		MinDuration: 1.0,
		MaxDuration: 30.0,
		Normalize:   true,
	}
}

// AudioPreprocessor turns audio files into ProcessedRecords.
type AudioPreprocessor struct {
	params    Params
	loader    Loader
	extractor *FeatureExtractor
}

// NewAudioPreprocessor creates a preprocessor with an FFmpeg-backed loader.
func NewAudioPreprocessor(params Params) *AudioPreprocessor {
	decoderConfig := transcode.DefaultDecoderConfig()
	decoderConfig.TargetSampleRate = params.SampleRate
	return NewAudioPreprocessorWithLoader(params, &decoderLoader{
		decoder: transcode.NewDecoder(decoderConfig),
	})
}

// NewAudioPreprocessorWithLoader creates a preprocessor with a custom loader.
func NewAudioPreprocessorWithLoader(params Params, loader Loader) *AudioPreprocessor {
	// Set defaults
	if params.SampleRate <= 0 {
		params.SampleRate = 22050
	}
	if params.WindowSize <= 0 {
		params.WindowSize = 2048
	}
	if params.HopSize <= 0 {
		params.HopSize = 512
	}
	if params.NumMels <= 0 {
		params.NumMels = 80
	}
	if params.NumMFCC <= 0 {
		params.NumMFCC = 13
	}
	if params.MinDuration <= 0 {
		params.MinDuration = 1.0
	}
	if params.MaxDuration <= 0 {
		params.MaxDuration = 30.0
	}

	return &AudioPreprocessor{
		params: params,
		loader: loader,
		extractor: NewFeatureExtractor(FeatureParams{
			SampleRate: params.SampleRate,
			WindowSize: params.WindowSize,
			HopSize:    params.HopSize,
			NumMels:    params.NumMels,
			NumMFCC:    params.NumMFCC,
		}),
	}
}

// Params returns the preprocessor configuration.
func (p *AudioPreprocessor) Params() Params {
	return p.params
}

// TargetLength returns the fixed sample count every record is trimmed or
// padded to before feature extraction.
func (p *AudioPreprocessor) TargetLength() int {
	return int(p.params.MaxDuration * float64(p.params.SampleRate))
}

// Load decodes and resamples an audio file to the target rate.
func (p *AudioPreprocessor) Load(path string) (*AudioSample, error) {
	data, err := p.loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return &AudioSample{
		PCM:        data.PCM,
		SampleRate: data.SampleRate,
		Source:     path,
	}, nil
}

// ValidateDuration reports whether a sample's duration lies within the
// configured bounds. Out-of-range duration is a skip, not an error.
func (p *AudioPreprocessor) ValidateDuration(sample *AudioSample) bool {
	duration := sample.Duration()
	return duration >= p.params.MinDuration && duration <= p.params.MaxDuration
}

// Normalize divides the waveform by its peak absolute amplitude in place.
// Silent audio passes through unchanged.
func (p *AudioPreprocessor) Normalize(sample *AudioSample) {
	peak := 0.0
	for _, v := range sample.PCM {
		if abs := math.Abs(v); abs > peak {
			peak = abs
		}
	}
	if peak == 0 {
		return
	}
	for i := range sample.PCM {
		sample.PCM[i] /= peak
	}
}

// FitLength truncates or zero-pads the waveform to exactly targetLength
// samples.
func (p *AudioPreprocessor) FitLength(sample *AudioSample, targetLength int) {
	if len(sample.PCM) == targetLength {
		return
	}
	if len(sample.PCM) > targetLength {
		sample.PCM = sample.PCM[:targetLength]
		return
	}
	padded := make([]float64, targetLength)
	copy(padded, sample.PCM)
	sample.PCM = padded
}

// ExtractFeatures computes the full feature bundle for a sample.
func (p *AudioPreprocessor) ExtractFeatures(sample *AudioSample) (*FeatureBundle, error) {
	return p.extractor.Extract(sample.PCM)
}

// ProcessOne composes load, duration validation, normalization, fixed-length
// framing and feature extraction for a single file, reporting the result as
// a tagged Outcome.
func (p *AudioPreprocessor) ProcessOne(path string) Outcome {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_preprocessor",
		"function":  "ProcessOne",
		"path":      path,
	})

	sample, err := p.Load(path)
	if err != nil {
		logger.Error(err, "Failed to load audio file")
		return Failed(FailureLoad, err)
	}

	duration := sample.Duration()

	if !p.ValidateDuration(sample) {
		logger.Debug("Duration out of range, skipping", logging.Fields{
			"duration":     duration,
			"min_duration": p.params.MinDuration,
			"max_duration": p.params.MaxDuration,
		})
		return Skipped(SkipDurationOutOfRange)
	}

	if p.params.Normalize {
		p.Normalize(sample)
	}
	p.FitLength(sample, p.TargetLength())

	features, err := p.ExtractFeatures(sample)
	if err != nil {
		logger.Error(err, "Feature extraction failed")
		return Failed(FailureExtraction, err)
	}

	logger.Debug("Processed audio file", logging.Fields{
		"duration":    duration,
		"samples":     len(sample.PCM),
		"time_frames": features.TimeFrames,
	})

	return Succeeded(&ProcessedRecord{
		FilePath:   path,
		Audio:      sample.PCM,
		SampleRate: sample.SampleRate,
		Duration:   duration,
		Features:   features,
		Augmented:  false,
	})
}
