package dataset

import (
	"gonum.org/v1/gonum/stat"
)

// StandardScaler standardizes feature vectors to zero mean and unit variance
// per dimension. Dimensions with zero variance pass through unscaled.
type StandardScaler struct {
	Mean []float64 `msgpack:"mean"`
	Std  []float64 `msgpack:"std"`
}

// NewStandardScaler creates an unfitted scaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit computes per-dimension mean and standard deviation over all vectors.
func (s *StandardScaler) Fit(vectors [][]float64) {
	if len(vectors) == 0 {
		return
	}
	dim := len(vectors[0])
	s.Mean = make([]float64, dim)
	s.Std = make([]float64, dim)

	column := make([]float64, len(vectors))
	for d := 0; d < dim; d++ {
		for i, v := range vectors {
			column[i] = v[d]
		}
		mean, std := stat.MeanStdDev(column, nil)
		s.Mean[d] = mean
		if std <= 0 {
			std = 1.0
		}
		s.Std[d] = std
	}
}

// Transform returns standardized copies of the input vectors.
func (s *StandardScaler) Transform(vectors [][]float64) [][]float64 {
	out := make([][]float64, len(vectors))
	for i, v := range vectors {
		scaled := make([]float64, len(v))
		for d, x := range v {
			if d < len(s.Mean) {
				scaled[d] = (x - s.Mean[d]) / s.Std[d]
			} else {
				scaled[d] = x
			}
		}
		out[i] = scaled
	}
	return out
}
