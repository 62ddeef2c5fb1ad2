package chroma

import (
	"math"

	"github.com/voicecast/audioml/algorithms/spectral"
)

// ChromaSTFT computes chromagrams from STFT magnitude spectrograms by folding
// frequency bins onto the 12 pitch classes (octave-folded, A4 tuning)
type ChromaSTFT struct {
	sampleRate int
	stft       *spectral.STFT
	tuningFreq float64
	minFreq    float64
	maxFreq    float64
}

// NewChromaSTFT creates a chromagram calculator with standard A4=440Hz tuning
func NewChromaSTFT(sampleRate int) *ChromaSTFT {
	return &ChromaSTFT{
		sampleRate: sampleRate,
		stft:       spectral.NewSTFT(),
		tuningFreq: 440.0,
		minFreq:    80.0,
		maxFreq:    8000.0,
	}
}

// Compute computes a chromagram from an audio signal
func (cs *ChromaSTFT) Compute(signal []float64, windowSize, hopSize int) ([][]float64, error) {
	stftResult, err := cs.stft.Compute(signal, windowSize, hopSize, cs.sampleRate)
	if err != nil {
		return nil, err
	}
	return cs.ComputeFromSTFT(stftResult), nil
}

// ComputeFromSTFT folds an STFT magnitude spectrogram into per-frame chroma
// vectors, each normalized to unit sum. Layout is frames x 12.
func (cs *ChromaSTFT) ComputeFromSTFT(stftResult *spectral.STFTResult) [][]float64 {
	if stftResult == nil || stftResult.TimeFrames == 0 {
		return [][]float64{}
	}

	mapping := cs.chromaMapping(stftResult.FreqBins, stftResult.FreqResolution)

	chromagram := make([][]float64, stftResult.TimeFrames)

	for t := 0; t < stftResult.TimeFrames; t++ {
		frame := make([]float64, 12)

		for f, bin := range mapping {
			if bin < 0 {
				continue
			}
			mag := stftResult.Magnitude[t][f]
			frame[bin] += mag * mag
		}

		normalizeFrame(frame)
		chromagram[t] = frame
	}

	return chromagram
}

// chromaMapping maps FFT bins to pitch class bins, -1 outside the valid range
func (cs *ChromaSTFT) chromaMapping(freqBins int, freqResolution float64) []int {
	mapping := make([]int, freqBins)

	for f := 0; f < freqBins; f++ {
		frequency := float64(f) * freqResolution

		if frequency < cs.minFreq || frequency > cs.maxFreq {
			mapping[f] = -1
			continue
		}

		// MIDI note number, A4 (tuning frequency) = 69
		midiNote := 69.0 + 12.0*math.Log2(frequency/cs.tuningFreq)
		mapping[f] = ((int(math.Round(midiNote)) % 12) + 12) % 12
	}

	return mapping
}

// normalizeFrame scales a chroma frame to unit sum in place
func normalizeFrame(frame []float64) {
	total := 0.0
	for _, energy := range frame {
		total += energy
	}
	if total > 1e-10 {
		for i := range frame {
			frame[i] /= total
		}
	}
}
