package preprocess

import (
	"fmt"

	"github.com/voicecast/audioml/algorithms/chroma"
	"github.com/voicecast/audioml/algorithms/spectral"
)

// FeatureBundle holds every acoustic feature extracted from one fixed-length
// sample. All arrays are computed with the same window and hop sizes, so the
// frame axis is aligned across features and its length is determined solely
// by configuration.
type FeatureBundle struct {
	MelSpectrogram [][]float64 `json:"mel_spectrogram"` // NumMels x TimeFrames, dB relative to peak
	MFCC           [][]float64 `json:"mfcc"`            // NumMFCC x TimeFrames
	Centroid       []float64   `json:"centroid"`        // Per-frame spectral centroid, Hz
	Rolloff        []float64   `json:"rolloff"`         // Per-frame rolloff frequency, Hz
	ZCR            []float64   `json:"zcr"`             // Per-frame zero crossing fraction
	Contrast       [][]float64 `json:"contrast"`        // Bands x TimeFrames, dB
	Tonnetz        [][]float64 `json:"tonnetz"`         // 6 x TimeFrames tonal centroid
	TimeFrames     int         `json:"time_frames"`
}

// FeatureParams configures the feature extractor.
type FeatureParams struct {
	SampleRate       int     `json:"sample_rate"`
	WindowSize       int     `json:"window_size"`
	HopSize          int     `json:"hop_size"`
	NumMels          int     `json:"num_mels"`
	NumMFCC          int     `json:"num_mfcc"`
	RolloffThreshold float64 `json:"rolloff_threshold"` // Energy fraction (default: 0.85)
	ContrastBands    int     `json:"contrast_bands"`    // Log-spaced bands (default: 6)
}

// FeatureExtractor computes a FeatureBundle from a waveform. A single STFT
// is shared across all spectral features.
type FeatureExtractor struct {
	params FeatureParams

	stft     *spectral.STFT
	melSpec  *spectral.MelSpectrogram
	mfcc     *spectral.MFCC
	centroid *spectral.SpectralCentroid
	rolloff  *spectral.SpectralRolloff
	contrast *spectral.SpectralContrast
	zcr      *spectral.ZeroCrossingRate
	chroma   *chroma.ChromaSTFT
	tonnetz  *chroma.Tonnetz
}

// NewFeatureExtractor creates a feature extractor.
func NewFeatureExtractor(params FeatureParams) *FeatureExtractor {
	if params.RolloffThreshold <= 0 || params.RolloffThreshold > 1 {
		params.RolloffThreshold = 0.85
	}
	if params.ContrastBands <= 0 {
		params.ContrastBands = 6
	}

	return &FeatureExtractor{
		params: params,
		stft:   spectral.NewSTFT(),
		melSpec: spectral.NewMelSpectrogramWithParams(params.SampleRate, spectral.MelSpectrogramParams{
			WindowSize: params.WindowSize,
			HopSize:    params.HopSize,
			NumMels:    params.NumMels,
		}),
		mfcc:     spectral.NewMFCC(params.NumMFCC),
		centroid: spectral.NewSpectralCentroid(params.SampleRate),
		rolloff:  spectral.NewSpectralRolloff(params.SampleRate),
		contrast: spectral.NewSpectralContrast(params.SampleRate, params.ContrastBands),
		zcr:      spectral.NewZeroCrossingRate(params.SampleRate, params.WindowSize, params.HopSize),
		chroma:   chroma.NewChromaSTFT(params.SampleRate),
		tonnetz:  chroma.NewTonnetz(),
	}
}

// NumFrames returns the frame count produced for a signal of the given
// length under this configuration.
func (fe *FeatureExtractor) NumFrames(signalLength int) int {
	return spectral.NumFrames(signalLength, fe.params.WindowSize, fe.params.HopSize)
}

// Extract computes the full feature bundle.
func (fe *FeatureExtractor) Extract(signal []float64) (*FeatureBundle, error) {
	stftResult, err := fe.stft.Compute(signal, fe.params.WindowSize, fe.params.HopSize, fe.params.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to compute STFT: %w", err)
	}

	melResult, err := fe.melSpec.ComputeFromSTFT(stftResult)
	if err != nil {
		return nil, fmt.Errorf("failed to compute mel spectrogram: %w", err)
	}

	mfccFrames, err := fe.mfcc.Compute(melResult.LogMel)
	if err != nil {
		return nil, fmt.Errorf("failed to compute MFCC: %w", err)
	}

	centroids := fe.centroid.ComputeFrames(stftResult.Magnitude)
	rolloffs := fe.rolloff.ComputeFrames(stftResult.Magnitude, fe.params.RolloffThreshold)
	zcrValues := fe.zcr.ComputeFrames(signal)
	contrasts := transpose(fe.contrast.ComputeFrames(stftResult.Magnitude))
	chromagram := fe.chroma.ComputeFromSTFT(stftResult)
	tonnetzFrames := transpose(fe.tonnetz.ComputeFrames(chromagram))

	return &FeatureBundle{
		MelSpectrogram: melResult.LogMel,
		MFCC:           mfccFrames,
		Centroid:       centroids,
		Rolloff:        rolloffs,
		ZCR:            zcrValues,
		Contrast:       contrasts,
		Tonnetz:        tonnetzFrames,
		TimeFrames:     stftResult.TimeFrames,
	}, nil
}

// transpose flips frames x dims into dims x frames to match the mel and
// MFCC layout.
func transpose(frames [][]float64) [][]float64 {
	if len(frames) == 0 || len(frames[0]) == 0 {
		return [][]float64{}
	}
	dims := len(frames[0])
	out := make([][]float64, dims)
	for d := 0; d < dims; d++ {
		out[d] = make([]float64, len(frames))
		for t := range frames {
			out[d][t] = frames[t][d]
		}
	}
	return out
}
