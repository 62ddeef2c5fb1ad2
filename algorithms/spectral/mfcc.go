package spectral

import (
	"fmt"
	"math"
)

// MFCC computes Mel-Frequency Cepstral Coefficients from a log-power mel
// spectrogram via an orthonormal DCT-II along the mel axis
type MFCC struct {
	numCoefficients int
	useLiftering    bool
	lifterCoeff     float64

	dctMatrix  [][]float64
	numFilters int
}

// MFCCParams contains parameters for MFCC computation
type MFCCParams struct {
	NumCoefficients int     `json:"num_coefficients"` // Number of MFCC coefficients (default: 13)
	UseLiftering    bool    `json:"use_liftering"`    // Apply sinusoidal liftering (default: false)
	LifterCoeff     float64 `json:"lifter_coeff"`     // Liftering coefficient (default: 22)
}

// NewMFCC creates a new MFCC computer with default parameters
func NewMFCC(numCoefficients int) *MFCC {
	return NewMFCCWithParams(MFCCParams{NumCoefficients: numCoefficients})
}

// NewMFCCWithParams creates a new MFCC computer with custom parameters
func NewMFCCWithParams(params MFCCParams) *MFCC {
	// Set defaults
	if params.NumCoefficients <= 0 {
		params.NumCoefficients = 13
	}
	if params.LifterCoeff <= 0 {
		params.LifterCoeff = 22.0
	}

	return &MFCC{
		numCoefficients: params.NumCoefficients,
		useLiftering:    params.UseLiftering,
		lifterCoeff:     params.LifterCoeff,
	}
}

// Compute calculates MFCCs from a log-power mel spectrogram laid out as
// mel bands x time frames. The result is coefficients x time frames.
func (m *MFCC) Compute(logMel [][]float64) ([][]float64, error) {
	if len(logMel) == 0 || len(logMel[0]) == 0 {
		return nil, fmt.Errorf("empty mel spectrogram")
	}

	numFilters := len(logMel)
	numFrames := len(logMel[0])

	if m.dctMatrix == nil || m.numFilters != numFilters {
		m.createDCTMatrix(numFilters)
	}

	coeffs := make([][]float64, m.numCoefficients)
	for k := range coeffs {
		coeffs[k] = make([]float64, numFrames)
	}

	for t := 0; t < numFrames; t++ {
		for k := 0; k < m.numCoefficients; k++ {
			sum := 0.0
			for n := 0; n < numFilters; n++ {
				sum += logMel[n][t] * m.dctMatrix[k][n]
			}
			coeffs[k][t] = sum
		}
	}

	if m.useLiftering {
		m.applyLiftering(coeffs)
	}

	return coeffs, nil
}

// createDCTMatrix creates the orthonormal DCT-II matrix
func (m *MFCC) createDCTMatrix(numFilters int) {
	m.numFilters = numFilters
	m.dctMatrix = make([][]float64, m.numCoefficients)

	for k := 0; k < m.numCoefficients; k++ {
		m.dctMatrix[k] = make([]float64, numFilters)

		for n := 0; n < numFilters; n++ {
			// DCT-II formula
			m.dctMatrix[k][n] = math.Cos(math.Pi * float64(k) * (float64(n) + 0.5) / float64(numFilters))

			// Orthonormal scaling
			if k == 0 {
				m.dctMatrix[k][n] *= math.Sqrt(1.0 / float64(numFilters))
			} else {
				m.dctMatrix[k][n] *= math.Sqrt(2.0 / float64(numFilters))
			}
		}
	}
}

// applyLiftering applies sinusoidal liftering in place to boost higher-order
// coefficients. C0 is left untouched.
func (m *MFCC) applyLiftering(coeffs [][]float64) {
	for k := 1; k < len(coeffs); k++ {
		lifter := 1.0 + (m.lifterCoeff/2.0)*math.Sin(math.Pi*float64(k)/m.lifterCoeff)
		for t := range coeffs[k] {
			coeffs[k][t] *= lifter
		}
	}
}
