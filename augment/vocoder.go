package augment

import (
	"fmt"
	"math"
	"math/cmplx"
)

// phaseVocoder time-stretches a signal by the given rate. Analysis frames
// are read at fractional positions t*rate with magnitude interpolation, and
// per-bin phase is accumulated from the measured instantaneous frequency so
// the synthesis hop stays coherent.
func (da *DataAugmentation) phaseVocoder(audio []float64, rate float64) ([]float64, error) {
	windowSize := da.params.WindowSize
	hopSize := da.params.HopSize

	stftResult, err := da.stft.Compute(audio, windowSize, hopSize, da.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to compute STFT: %w", err)
	}

	numFrames := stftResult.TimeFrames
	freqBins := stftResult.FreqBins
	if numFrames < 2 {
		return nil, fmt.Errorf("signal too short for phase vocoder: %d frames", numFrames)
	}

	// Expected per-hop phase advance for each bin
	omega := make([]float64, freqBins)
	for k := 0; k < freqBins; k++ {
		omega[k] = 2.0 * math.Pi * float64(k) * float64(hopSize) / float64(windowSize)
	}

	numOutFrames := int(float64(numFrames-1)/rate) + 1
	outFrames := make([][]complex128, numOutFrames)

	phaseAcc := make([]float64, freqBins)
	for k := 0; k < freqBins; k++ {
		phaseAcc[k] = stftResult.Phase[0][k]
	}

	for out := 0; out < numOutFrames; out++ {
		pos := float64(out) * rate
		left := int(pos)
		if left >= numFrames-1 {
			left = numFrames - 2
		}
		frac := pos - float64(left)

		frame := make([]complex128, freqBins)
		for k := 0; k < freqBins; k++ {
			mag := stftResult.Magnitude[left][k]*(1-frac) + stftResult.Magnitude[left+1][k]*frac
			frame[k] = cmplx.Rect(mag, phaseAcc[k])
		}
		outFrames[out] = frame

		// Advance the accumulator by the measured instantaneous
		// frequency between the bracketing analysis frames
		for k := 0; k < freqBins; k++ {
			delta := stftResult.Phase[left+1][k] - stftResult.Phase[left][k] - omega[k]
			delta = wrapPhase(delta)
			phaseAcc[k] += omega[k] + delta
		}
	}

	return da.stft.Inverse(outFrames, windowSize, hopSize), nil
}

// wrapPhase maps an angle into (-pi, pi].
func wrapPhase(phase float64) float64 {
	wrapped := math.Mod(phase+math.Pi, 2.0*math.Pi)
	if wrapped < 0 {
		wrapped += 2.0 * math.Pi
	}
	return wrapped - math.Pi
}
