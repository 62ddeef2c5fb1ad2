package dataset

import (
	"fmt"

	"github.com/voicecast/audioml/preprocess"
)

// FeatureNames lists the components of the flattened feature vector in
// concatenation order.
func FeatureNames() []string {
	return []string{"mel_spectrogram", "mfcc", "spectral_centroid", "spectral_rolloff", "zero_crossing_rate"}
}

// Vectorize concatenates the flattened mel spectrogram, flattened MFCC and
// the three per-frame spectral descriptors into one numeric vector. Fixed
// upstream framing guarantees equal lengths across a batch.
func Vectorize(features *preprocess.FeatureBundle) ([]float64, error) {
	if features == nil {
		return nil, fmt.Errorf("nil feature bundle")
	}

	size := 0
	for _, row := range features.MelSpectrogram {
		size += len(row)
	}
	for _, row := range features.MFCC {
		size += len(row)
	}
	size += len(features.Centroid) + len(features.Rolloff) + len(features.ZCR)

	vector := make([]float64, 0, size)
	for _, row := range features.MelSpectrogram {
		vector = append(vector, row...)
	}
	for _, row := range features.MFCC {
		vector = append(vector, row...)
	}
	vector = append(vector, features.Centroid...)
	vector = append(vector, features.Rolloff...)
	vector = append(vector, features.ZCR...)

	if len(vector) == 0 {
		return nil, fmt.Errorf("empty feature bundle")
	}
	return vector, nil
}
