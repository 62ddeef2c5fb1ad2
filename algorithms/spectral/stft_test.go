package spectral

import (
	"math"
	"testing"
)

func sineWave(n int, freq float64, sampleRate int) []float64 {
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return signal
}

func TestNumFrames(t *testing.T) {
	cases := []struct {
		length, window, hop, want int
	}{
		{2048, 2048, 512, 1},
		{2048 + 512, 2048, 512, 2},
		{22050, 2048, 512, 40},
		{100, 2048, 512, 0},
		{2048, 2048, 0, 0},
	}
	for _, c := range cases {
		if got := NumFrames(c.length, c.window, c.hop); got != c.want {
			t.Errorf("NumFrames(%d, %d, %d) = %d, want %d", c.length, c.window, c.hop, got, c.want)
		}
	}
}

func TestSTFTShape(t *testing.T) {
	signal := sineWave(8192, 440, 8000)

	stft := NewSTFT()
	result, err := stft.Compute(signal, 1024, 256, 8000)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	wantFrames := NumFrames(len(signal), 1024, 256)
	if result.TimeFrames != wantFrames {
		t.Errorf("TimeFrames = %d, want %d", result.TimeFrames, wantFrames)
	}
	if result.FreqBins != 513 {
		t.Errorf("FreqBins = %d, want 513", result.FreqBins)
	}
	if len(result.Magnitude) != wantFrames || len(result.Magnitude[0]) != 513 {
		t.Errorf("magnitude shape = %dx%d", len(result.Magnitude), len(result.Magnitude[0]))
	}
}

func TestSTFTPeakBin(t *testing.T) {
	sampleRate := 8000
	freq := 1000.0
	signal := sineWave(8192, freq, sampleRate)

	stft := NewSTFT()
	result, err := stft.Compute(signal, 1024, 256, sampleRate)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// Middle frame should peak at the sine's bin
	frame := result.Magnitude[result.TimeFrames/2]
	peakBin := 0
	for i, mag := range frame {
		if mag > frame[peakBin] {
			peakBin = i
		}
	}

	wantBin := int(freq / result.FreqResolution)
	if peakBin < wantBin-1 || peakBin > wantBin+1 {
		t.Errorf("peak bin = %d, want near %d", peakBin, wantBin)
	}
}

func TestSTFTErrors(t *testing.T) {
	stft := NewSTFT()

	if _, err := stft.Compute(nil, 1024, 256, 8000); err == nil {
		t.Error("expected error for empty signal")
	}
	if _, err := stft.Compute(make([]float64, 100), 1024, 256, 8000); err == nil {
		t.Error("expected error for signal shorter than window")
	}
	if _, err := stft.Compute(make([]float64, 4096), 1024, 0, 8000); err == nil {
		t.Error("expected error for zero hop")
	}
}

func TestSTFTInverseRoundTrip(t *testing.T) {
	sampleRate := 8000
	signal := sineWave(4096, 500, sampleRate)

	stft := NewSTFT()
	result, err := stft.Compute(signal, 512, 128, sampleRate)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	reconstructed := stft.Inverse(result.Complex, 512, 128)
	if len(reconstructed) < len(signal)-512 {
		t.Fatalf("reconstructed length %d too short", len(reconstructed))
	}

	// Compare the interior where overlap-add has full window coverage
	var sumErr, sumRef float64
	for i := 512; i < len(signal)-512 && i < len(reconstructed); i++ {
		diff := reconstructed[i] - signal[i]
		sumErr += diff * diff
		sumRef += signal[i] * signal[i]
	}
	if sumErr/sumRef > 1e-3 {
		t.Errorf("relative reconstruction error %.6f too high", sumErr/sumRef)
	}
}

func TestMelFilterBank(t *testing.T) {
	ms := NewMelScale()

	bank := ms.CreateMelFilterBank(40, 2048, 22050, 0, 11025)
	if len(bank) != 40 {
		t.Fatalf("filter count = %d, want 40", len(bank))
	}
	for i, filter := range bank {
		if len(filter) != 1025 {
			t.Fatalf("filter %d has %d bins, want 1025", i, len(filter))
		}
		for _, w := range filter {
			if w < 0 || w > 1 {
				t.Fatalf("filter %d has weight %g outside [0, 1]", i, w)
			}
		}
	}
}

func TestMelHzRoundTrip(t *testing.T) {
	ms := NewMelScale()
	for _, hz := range []float64{100, 440, 1000, 8000} {
		back := ms.MelToHz(ms.HzToMel(hz))
		if math.Abs(back-hz) > 1e-6 {
			t.Errorf("round trip %g Hz gave %g", hz, back)
		}
	}
}

func TestMelSpectrogramShapeAndRef(t *testing.T) {
	signal := sineWave(22050, 440, 22050)

	mel := NewMelSpectrogramWithParams(22050, MelSpectrogramParams{
		WindowSize: 2048,
		HopSize:    512,
		NumMels:    80,
	})
	result, err := mel.Compute(signal)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if result.NumMels != 80 {
		t.Errorf("NumMels = %d, want 80", result.NumMels)
	}
	wantFrames := NumFrames(len(signal), 2048, 512)
	if result.TimeFrames != wantFrames {
		t.Errorf("TimeFrames = %d, want %d", result.TimeFrames, wantFrames)
	}

	// dB values referenced to peak: max exactly 0, everything else below
	peak := math.Inf(-1)
	for _, row := range result.LogMel {
		for _, v := range row {
			if v > peak {
				peak = v
			}
			if v > 1e-9 {
				t.Fatalf("log-mel value %g above reference", v)
			}
		}
	}
	if math.Abs(peak) > 1e-9 {
		t.Errorf("peak dB = %g, want 0", peak)
	}
}

func TestMFCCShape(t *testing.T) {
	signal := sineWave(22050, 440, 22050)

	mel := NewMelSpectrogram(22050)
	melResult, err := mel.Compute(signal)
	if err != nil {
		t.Fatalf("mel: %v", err)
	}

	mfcc := NewMFCC(13)
	coeffs, err := mfcc.Compute(melResult.LogMel)
	if err != nil {
		t.Fatalf("mfcc: %v", err)
	}

	if len(coeffs) != 13 {
		t.Fatalf("coefficient count = %d, want 13", len(coeffs))
	}
	for k, row := range coeffs {
		if len(row) != melResult.TimeFrames {
			t.Errorf("coefficient %d has %d frames, want %d", k, len(row), melResult.TimeFrames)
		}
	}
}

func TestZeroCrossingRate(t *testing.T) {
	zcr := NewZeroCrossingRate(8000, 256, 128)

	// Alternating signal crosses at every sample
	alternating := make([]float64, 256)
	for i := range alternating {
		if i%2 == 0 {
			alternating[i] = 1
		} else {
			alternating[i] = -1
		}
	}
	if got := zcr.Compute(alternating); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("alternating ZCR = %g, want 1", got)
	}

	// Constant signal never crosses
	constant := make([]float64, 256)
	for i := range constant {
		constant[i] = 0.5
	}
	if got := zcr.Compute(constant); got != 0 {
		t.Errorf("constant ZCR = %g, want 0", got)
	}

	frames := zcr.ComputeFrames(make([]float64, 2048))
	if want := NumFrames(2048, 256, 128); len(frames) != want {
		t.Errorf("frame count = %d, want %d", len(frames), want)
	}
}

func TestSpectralDescriptors(t *testing.T) {
	sampleRate := 8000
	signal := sineWave(8192, 1000, sampleRate)

	stft := NewSTFT()
	result, err := stft.Compute(signal, 1024, 256, sampleRate)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	centroids := NewSpectralCentroid(sampleRate).ComputeFrames(result.Magnitude)
	if len(centroids) != result.TimeFrames {
		t.Fatalf("centroid frames = %d, want %d", len(centroids), result.TimeFrames)
	}
	// A pure tone's centroid sits near the tone frequency
	mid := centroids[len(centroids)/2]
	if mid < 800 || mid > 1200 {
		t.Errorf("centroid = %g Hz, want near 1000", mid)
	}

	rolloffs := NewSpectralRolloff(sampleRate).ComputeFrames(result.Magnitude, 0.85)
	if len(rolloffs) != result.TimeFrames {
		t.Fatalf("rolloff frames = %d", len(rolloffs))
	}
	for _, r := range rolloffs {
		if r < 0 || r > float64(sampleRate)/2 {
			t.Fatalf("rolloff %g outside [0, Nyquist]", r)
		}
	}

	contrasts := NewSpectralContrast(sampleRate, 6).ComputeFrames(result.Magnitude)
	if len(contrasts) != result.TimeFrames {
		t.Fatalf("contrast frames = %d", len(contrasts))
	}
	if len(contrasts[0]) != 7 {
		t.Errorf("contrast bands = %d, want 7", len(contrasts[0]))
	}
}
