package chroma

import (
	"math"
)

// Tonnetz projects chroma vectors onto a six-dimensional tonal centroid
// space. The three coordinate pairs track the circle of fifths, minor
// thirds and major thirds; harmonically close pitch content maps to
// nearby points.
type Tonnetz struct {
	basis [6][12]float64
}

// NewTonnetz creates a tonal centroid projector
func NewTonnetz() *Tonnetz {
	t := &Tonnetz{}

	// Interval multipliers per dimension pair: fifths, minor thirds,
	// major thirds. The thirds circles use half the radius of the
	// fifths circle.
	multipliers := [3]float64{7, 3, 2}
	radii := [3]float64{1.0, 1.0, 0.5}

	for d := 0; d < 3; d++ {
		for pc := 0; pc < 12; pc++ {
			angle := math.Pi / 6.0 * multipliers[d] * float64(pc)
			t.basis[2*d][pc] = radii[d] * math.Sin(angle)
			t.basis[2*d+1][pc] = radii[d] * math.Cos(angle)
		}
	}

	return t
}

// Compute projects a single chroma vector (12 pitch classes) onto the six
// tonal centroid dimensions
func (t *Tonnetz) Compute(chromaFrame []float64) []float64 {
	centroid := make([]float64, 6)
	if len(chromaFrame) != 12 {
		return centroid
	}

	total := 0.0
	for _, energy := range chromaFrame {
		total += energy
	}
	if total <= 1e-10 {
		return centroid
	}

	for d := 0; d < 6; d++ {
		sum := 0.0
		for pc := 0; pc < 12; pc++ {
			sum += t.basis[d][pc] * chromaFrame[pc]
		}
		centroid[d] = sum / total
	}

	return centroid
}

// ComputeFrames projects a whole chromagram, one 6-D centroid per frame
func (t *Tonnetz) ComputeFrames(chromagram [][]float64) [][]float64 {
	centroids := make([][]float64, len(chromagram))
	for i, frame := range chromagram {
		centroids[i] = t.Compute(frame)
	}
	return centroids
}
