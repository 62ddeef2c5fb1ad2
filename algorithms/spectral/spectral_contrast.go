package spectral

import (
	"math"
	"sort"
)

// SpectralContrast measures the level difference between spectral peaks and
// valleys per frequency band. One sub-band below 200 Hz plus numBands
// logarithmically spaced bands up to Nyquist, so each frame yields
// numBands+1 values.
type SpectralContrast struct {
	sampleRate int
	numBands   int
	bandEdges  []int
	numBins    int
}

// NewSpectralContrast creates a new spectral contrast calculator
func NewSpectralContrast(sampleRate int, numBands int) *SpectralContrast {
	if numBands <= 0 {
		numBands = 6
	}
	return &SpectralContrast{
		sampleRate: sampleRate,
		numBands:   numBands,
	}
}

// Compute calculates spectral contrast for a single magnitude spectrum
func (sc *SpectralContrast) Compute(magnitudeSpectrum []float64) []float64 {
	if len(magnitudeSpectrum) == 0 {
		return []float64{}
	}

	if sc.numBins != len(magnitudeSpectrum) {
		sc.initializeBands(len(magnitudeSpectrum))
	}

	contrast := make([]float64, len(sc.bandEdges)-1)

	for band := range contrast {
		startBin := sc.bandEdges[band]
		endBin := min(sc.bandEdges[band+1], len(magnitudeSpectrum))

		if startBin >= endBin {
			continue
		}

		contrast[band] = bandContrast(magnitudeSpectrum[startBin:endBin])
	}

	return contrast
}

// ComputeFrames processes a whole spectrogram, one contrast vector per frame
func (sc *SpectralContrast) ComputeFrames(spectrogram [][]float64) [][]float64 {
	contrasts := make([][]float64, len(spectrogram))

	for t, magnitudeSpectrum := range spectrogram {
		contrasts[t] = sc.Compute(magnitudeSpectrum)
	}

	return contrasts
}

// bandContrast returns the peak-to-valley power ratio in dB for one band,
// where peak and valley are the means of the top and bottom 20% of bins
func bandContrast(bandSpectrum []float64) float64 {
	power := make([]float64, len(bandSpectrum))
	for i, mag := range bandSpectrum {
		power[i] = mag * mag
	}
	sort.Float64s(power)

	quantile := max(len(power)/5, 1)

	valleyEnergy := 0.0
	for i := 0; i < quantile; i++ {
		valleyEnergy += power[i]
	}
	valleyEnergy /= float64(quantile)

	peakEnergy := 0.0
	for i := len(power) - quantile; i < len(power); i++ {
		peakEnergy += power[i]
	}
	peakEnergy /= float64(quantile)

	if peakEnergy <= 0 {
		return 0.0
	}
	if valleyEnergy <= 0 {
		valleyEnergy = 1e-10
	}

	return 10.0 * math.Log10(peakEnergy/valleyEnergy)
}

// initializeBands computes band edge bin indices: a sub-band from DC to
// 200 Hz, then numBands log-spaced bands up to Nyquist
func (sc *SpectralContrast) initializeBands(numBins int) {
	sc.numBins = numBins
	nyquist := float64(sc.sampleRate) / 2.0

	minFreq := 200.0
	maxFreq := nyquist
	if maxFreq <= minFreq {
		maxFreq = minFreq * 2
	}

	logMin := math.Log10(minFreq)
	logStep := (math.Log10(maxFreq) - logMin) / float64(sc.numBands)

	edges := make([]int, sc.numBands+2)
	edges[0] = 0
	for i := 0; i <= sc.numBands; i++ {
		freq := math.Pow(10.0, logMin+float64(i)*logStep)
		binIdx := int(freq * float64(numBins-1) / nyquist)
		binIdx = min(max(binIdx, 0), numBins-1)
		edges[i+1] = binIdx
	}

	// Keep edges strictly increasing
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			edges[i] = edges[i-1] + 1
		}
	}

	sc.bandEdges = edges
}
