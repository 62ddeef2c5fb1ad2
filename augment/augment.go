// Package augment produces perturbations of loaded audio signals that keep
// semantic content intact: additive noise, time stretching and pitch
// shifting. Augmentation is an enhancement, so stretch and shift never
// propagate errors; on failure they return the input unchanged.
package augment

import (
	"math"
	"math/rand"

	"github.com/voicecast/audioml/algorithms/spectral"
	"github.com/voicecast/audioml/logging"
)

// Params configures randomized augmentation.
type Params struct {
	NoiseProb   float64 `json:"noise_prob"`   // Probability of additive noise (default: 0.5)
	StretchProb float64 `json:"stretch_prob"` // Probability of time stretch (default: 0.3)
	PitchProb   float64 `json:"pitch_prob"`   // Probability of pitch shift (default: 0.3)

	NoiseLevelMin float64 `json:"noise_level_min"` // (default: 0.001)
	NoiseLevelMax float64 `json:"noise_level_max"` // (default: 0.01)
	StretchMin    float64 `json:"stretch_min"`     // (default: 0.8)
	StretchMax    float64 `json:"stretch_max"`     // (default: 1.2)
	PitchMin      float64 `json:"pitch_min"`       // Semitones (default: -2)
	PitchMax      float64 `json:"pitch_max"`       // Semitones (default: 2)

	WindowSize int `json:"window_size"` // Phase vocoder FFT size (default: 2048)
	HopSize    int `json:"hop_size"`    // Phase vocoder hop (default: 512)
}

// DefaultParams returns the standard augmentation configuration.
func DefaultParams() Params {
	return Params{
		NoiseProb:     0.5,
		StretchProb:   0.3,
		PitchProb:     0.3,
		NoiseLevelMin: 0.001,
		NoiseLevelMax: 0.01,
		StretchMin:    0.8,
		StretchMax:    1.2,
		PitchMin:      -2.0,
		PitchMax:      2.0,
		WindowSize:    2048,
		HopSize:       512,
	}
}

// DataAugmentation applies waveform perturbations.
type DataAugmentation struct {
	params     Params
	sampleRate int
	stft       *spectral.STFT
	rng        *rand.Rand
}

// NewDataAugmentation creates an augmenter with a time-seeded RNG.
func NewDataAugmentation(sampleRate int, params Params) *DataAugmentation {
	return NewDataAugmentationWithSeed(sampleRate, params, rand.Int63())
}

// NewDataAugmentationWithSeed creates an augmenter with a fixed RNG seed for
// reproducible randomized augmentation.
func NewDataAugmentationWithSeed(sampleRate int, params Params, seed int64) *DataAugmentation {
	// Set defaults
	if params.NoiseProb <= 0 {
		params.NoiseProb = 0.5
	}
	if params.StretchProb <= 0 {
		params.StretchProb = 0.3
	}
	if params.PitchProb <= 0 {
		params.PitchProb = 0.3
	}
	if params.NoiseLevelMin <= 0 {
		params.NoiseLevelMin = 0.001
	}
	if params.NoiseLevelMax <= 0 {
		params.NoiseLevelMax = 0.01
	}
	if params.StretchMin <= 0 {
		params.StretchMin = 0.8
	}
	if params.StretchMax <= 0 {
		params.StretchMax = 1.2
	}
	if params.PitchMin == 0 && params.PitchMax == 0 {
		params.PitchMin = -2.0
		params.PitchMax = 2.0
	}
	if params.WindowSize <= 0 {
		params.WindowSize = 2048
	}
	if params.HopSize <= 0 {
		params.HopSize = 512
	}

	return &DataAugmentation{
		params:     params,
		sampleRate: sampleRate,
		stft:       spectral.NewSTFT(),
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// AddNoise returns the signal with zero-mean Gaussian noise of the given
// standard deviation added. Output length equals input length.
func (da *DataAugmentation) AddNoise(audio []float64, level float64) []float64 {
	noisy := make([]float64, len(audio))
	for i, v := range audio {
		noisy[i] = v + da.rng.NormFloat64()*level
	}
	return noisy
}

// TimeStretch changes the temporal rate of the signal by the given factor
// without altering pitch, using a phase vocoder. rate > 1 shortens the
// signal, rate < 1 lengthens it. On failure the input is returned unchanged.
func (da *DataAugmentation) TimeStretch(audio []float64, rate float64) []float64 {
	logger := logging.WithFields(logging.Fields{
		"component": "data_augmentation",
		"function":  "TimeStretch",
		"rate":      rate,
	})

	if rate <= 0 || rate == 1.0 {
		return audio
	}

	stretched, err := da.phaseVocoder(audio, rate)
	if err != nil {
		logger.Warn("Time stretch failed, returning input unchanged", logging.Fields{
			"error": err.Error(),
		})
		return audio
	}
	return stretched
}

// PitchShift raises or lowers the pitch by n semitones while preserving
// duration: a phase vocoder stretch followed by resampling back to the
// original length. On failure the input is returned unchanged.
func (da *DataAugmentation) PitchShift(audio []float64, nSteps float64) []float64 {
	logger := logging.WithFields(logging.Fields{
		"component": "data_augmentation",
		"function":  "PitchShift",
		"n_steps":   nSteps,
	})

	if nSteps == 0 {
		return audio
	}

	rate := math.Pow(2.0, -nSteps/12.0)

	stretched, err := da.phaseVocoder(audio, rate)
	if err != nil {
		logger.Warn("Pitch shift failed, returning input unchanged", logging.Fields{
			"error": err.Error(),
		})
		return audio
	}

	shifted := resampleLinear(stretched, len(audio))
	return shifted
}

// Randomize applies noise, stretch and pitch transforms, each with its
// configured independent probability and a magnitude drawn uniformly from
// its configured range. Transforms compose in the order noise, stretch,
// pitch.
func (da *DataAugmentation) Randomize(audio []float64) []float64 {
	out := audio

	if da.rng.Float64() < da.params.NoiseProb {
		level := da.params.NoiseLevelMin + da.rng.Float64()*(da.params.NoiseLevelMax-da.params.NoiseLevelMin)
		out = da.AddNoise(out, level)
	}

	if da.rng.Float64() < da.params.StretchProb {
		rate := da.params.StretchMin + da.rng.Float64()*(da.params.StretchMax-da.params.StretchMin)
		out = da.TimeStretch(out, rate)
	}

	if da.rng.Float64() < da.params.PitchProb {
		steps := da.params.PitchMin + da.rng.Float64()*(da.params.PitchMax-da.params.PitchMin)
		out = da.PitchShift(out, steps)
	}

	return out
}

// Variant identifies one of the fixed deterministic augmentations.
type Variant string

const (
	VariantNoise   Variant = "noise"
	VariantStretch Variant = "stretch"
	VariantPitch   Variant = "pitch"
)

// VariantAudio is one deterministic perturbation of a source signal.
type VariantAudio struct {
	Variant Variant
	Audio   []float64
}

// Variants returns the three fixed deterministic perturbations of a signal
// used by the dataset augmentation fan-out, in a fixed order: noise at level
// 0.005, time stretch at rate 1.1, and pitch shift of +1 semitone. Each
// variant derives from the original signal independently, never from
// another variant.
func (da *DataAugmentation) Variants(audio []float64) []VariantAudio {
	return []VariantAudio{
		{Variant: VariantNoise, Audio: da.AddNoise(audio, 0.005)},
		{Variant: VariantStretch, Audio: da.TimeStretch(audio, 1.1)},
		{Variant: VariantPitch, Audio: da.PitchShift(audio, 1.0)},
	}
}

// resampleLinear resamples a signal to the target length by linear
// interpolation.
func resampleLinear(signal []float64, targetLength int) []float64 {
	if targetLength <= 0 || len(signal) == 0 {
		return []float64{}
	}
	if len(signal) == targetLength {
		return signal
	}

	out := make([]float64, targetLength)
	scale := float64(len(signal)-1) / float64(targetLength-1)
	if targetLength == 1 {
		scale = 0
	}

	for i := range out {
		pos := float64(i) * scale
		left := int(pos)
		if left >= len(signal)-1 {
			out[i] = signal[len(signal)-1]
			continue
		}
		frac := pos - float64(left)
		out[i] = signal[left]*(1-frac) + signal[left+1]*frac
	}

	return out
}
