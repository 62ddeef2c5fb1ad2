package spectral

import (
	"gonum.org/v1/gonum/stat"
)

// ZeroCrossingRate calculates per-frame zero crossing rates. High rates
// indicate noisy or unvoiced content, low rates indicate voiced content.
type ZeroCrossingRate struct {
	sampleRate int
	frameSize  int
	hopSize    int
}

// NewZeroCrossingRate creates a calculator with the given framing. Using the
// same frame and hop sizes as the STFT keeps the frame axis aligned with
// spectral features.
func NewZeroCrossingRate(sampleRate, frameSize, hopSize int) *ZeroCrossingRate {
	return &ZeroCrossingRate{
		sampleRate: sampleRate,
		frameSize:  frameSize,
		hopSize:    hopSize,
	}
}

// Compute returns the fraction of sign changes in a single frame (0 to 1)
func (zcr *ZeroCrossingRate) Compute(frame []float64) float64 {
	if len(frame) < 2 {
		return 0.0
	}

	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0 && frame[i] < 0) || (frame[i-1] < 0 && frame[i] >= 0) {
			crossings++
		}
	}

	return float64(crossings) / float64(len(frame)-1)
}

// ComputeRate returns crossings per second for a single frame
func (zcr *ZeroCrossingRate) ComputeRate(frame []float64) float64 {
	if len(frame) < 2 || zcr.sampleRate <= 0 {
		return 0.0
	}
	frameDuration := float64(len(frame)) / float64(zcr.sampleRate)
	return zcr.Compute(frame) * float64(len(frame)-1) / frameDuration
}

// ComputeFrames calculates the crossing fraction for overlapping frames
func (zcr *ZeroCrossingRate) ComputeFrames(signal []float64) []float64 {
	numFrames := NumFrames(len(signal), zcr.frameSize, zcr.hopSize)
	if numFrames <= 0 {
		return []float64{}
	}

	zcrValues := make([]float64, numFrames)

	for i := 0; i < numFrames; i++ {
		startIdx := i * zcr.hopSize
		zcrValues[i] = zcr.Compute(signal[startIdx : startIdx+zcr.frameSize])
	}

	return zcrValues
}

// ComputeStatistics summarizes a ZCR series
func (zcr *ZeroCrossingRate) ComputeStatistics(zcrValues []float64) (mean, variance float64) {
	if len(zcrValues) == 0 {
		return 0, 0
	}
	return stat.Mean(zcrValues, nil), stat.Variance(zcrValues, nil)
}
