package spectral

import (
	"fmt"
	"math"
)

// MelSpectrogram computes log-power mel spectrograms from audio signals.
// Power is expressed in decibels relative to the peak power of the
// spectrogram, so the loudest cell is always 0 dB.
type MelSpectrogram struct {
	sampleRate int
	windowSize int
	hopSize    int
	numMels    int
	lowFreq    float64
	highFreq   float64
	topDB      float64

	stft       *STFT
	melScale   *MelScale
	filterBank [][]float64
}

// MelSpectrogramParams contains parameters for mel spectrogram computation
type MelSpectrogramParams struct {
	WindowSize int     `json:"window_size"` // FFT window size (default: 2048)
	HopSize    int     `json:"hop_size"`    // Hop between frames (default: 512)
	NumMels    int     `json:"num_mels"`    // Mel bands (default: 80)
	LowFreq    float64 `json:"low_freq"`    // Low frequency bound (default: 0)
	HighFreq   float64 `json:"high_freq"`   // High frequency bound (default: sampleRate/2)
	TopDB      float64 `json:"top_db"`      // Dynamic range floor below peak (default: 80)
}

// MelSpectrogramResult contains the log-power mel spectrogram
type MelSpectrogramResult struct {
	LogMel     [][]float64 `json:"log_mel"`     // Mel bands x time frames, dB relative to peak
	NumMels    int         `json:"num_mels"`    // Number of mel bands
	TimeFrames int         `json:"time_frames"` // Number of time frames
	SampleRate int         `json:"sample_rate"` // Sample rate
}

// NewMelSpectrogram creates a mel spectrogram extractor with default parameters
func NewMelSpectrogram(sampleRate int) *MelSpectrogram {
	return NewMelSpectrogramWithParams(sampleRate, MelSpectrogramParams{})
}

// NewMelSpectrogramWithParams creates a mel spectrogram extractor with custom
// parameters
func NewMelSpectrogramWithParams(sampleRate int, params MelSpectrogramParams) *MelSpectrogram {
	// Set defaults
	if params.WindowSize <= 0 {
		params.WindowSize = 2048
	}
	if params.HopSize <= 0 {
		params.HopSize = 512
	}
	if params.NumMels <= 0 {
		params.NumMels = 80
	}
	if params.HighFreq <= 0 {
		params.HighFreq = float64(sampleRate) / 2.0
	}
	if params.TopDB <= 0 {
		params.TopDB = 80.0
	}

	return &MelSpectrogram{
		sampleRate: sampleRate,
		windowSize: params.WindowSize,
		hopSize:    params.HopSize,
		numMels:    params.NumMels,
		lowFreq:    params.LowFreq,
		highFreq:   params.HighFreq,
		topDB:      params.TopDB,
		stft:       NewSTFT(),
		melScale:   NewMelScale(),
	}
}

// Compute calculates the log-power mel spectrogram of a signal
func (m *MelSpectrogram) Compute(signal []float64) (*MelSpectrogramResult, error) {
	stftResult, err := m.stft.Compute(signal, m.windowSize, m.hopSize, m.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to compute STFT: %w", err)
	}
	return m.ComputeFromSTFT(stftResult)
}

// ComputeFromSTFT calculates the log-power mel spectrogram from an existing
// STFT result, so callers sharing one STFT across extractors avoid recomputing
// it per feature
func (m *MelSpectrogram) ComputeFromSTFT(stftResult *STFTResult) (*MelSpectrogramResult, error) {
	if stftResult == nil || stftResult.TimeFrames == 0 {
		return nil, fmt.Errorf("empty spectrogram")
	}

	if m.filterBank == nil {
		m.filterBank = m.melScale.CreateMelFilterBank(m.numMels, m.windowSize, m.sampleRate, m.lowFreq, m.highFreq)
		if len(m.filterBank) == 0 {
			return nil, fmt.Errorf("failed to create mel filter bank")
		}
	}

	numFrames := stftResult.TimeFrames

	// Mel power per band per frame
	melPower := make([][]float64, m.numMels)
	for b := range melPower {
		melPower[b] = make([]float64, numFrames)
	}

	powerSpectrum := make([]float64, stftResult.FreqBins)
	peak := 0.0

	for t := 0; t < numFrames; t++ {
		for i, mag := range stftResult.Magnitude[t] {
			powerSpectrum[i] = mag * mag
		}
		melSpectrum := m.melScale.ApplyFilterBank(powerSpectrum, m.filterBank)
		for b, p := range melSpectrum {
			melPower[b][t] = p
			if p > peak {
				peak = p
			}
		}
	}

	// Convert to dB relative to the peak, clamped at topDB below it
	ref := math.Max(peak, 1e-10)
	logMel := make([][]float64, m.numMels)
	for b := range logMel {
		logMel[b] = make([]float64, numFrames)
		for t, p := range melPower[b] {
			db := 10.0 * math.Log10(math.Max(p, 1e-10)/ref)
			logMel[b][t] = math.Max(db, -m.topDB)
		}
	}

	return &MelSpectrogramResult{
		LogMel:     logMel,
		NumMels:    m.numMels,
		TimeFrames: numFrames,
		SampleRate: m.sampleRate,
	}, nil
}
