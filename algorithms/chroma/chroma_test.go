package chroma

import (
	"math"
	"testing"

	"github.com/voicecast/audioml/algorithms/spectral"
)

func sineWave(n int, freq float64, sampleRate int) []float64 {
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return signal
}

func TestChromaPitchClass(t *testing.T) {
	sampleRate := 22050
	// A4 = 440 Hz, pitch class 9
	signal := sineWave(22050, 440, sampleRate)

	cs := NewChromaSTFT(sampleRate)
	chromagram, err := cs.Compute(signal, 2048, 512)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(chromagram) == 0 {
		t.Fatal("empty chromagram")
	}

	frame := chromagram[len(chromagram)/2]
	if len(frame) != 12 {
		t.Fatalf("pitch classes = %d, want 12", len(frame))
	}

	strongest := 0
	for pc, energy := range frame {
		if energy > frame[strongest] {
			strongest = pc
		}
	}
	if strongest != 9 {
		t.Errorf("strongest pitch class = %d, want 9 (A)", strongest)
	}

	// Each frame is normalized to unit sum
	sum := 0.0
	for _, energy := range frame {
		sum += energy
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("frame sum = %g, want 1", sum)
	}
}

func TestTonnetzShape(t *testing.T) {
	tz := NewTonnetz()

	// Pure C: energy in pitch class 0 only
	frame := make([]float64, 12)
	frame[0] = 1

	centroid := tz.Compute(frame)
	if len(centroid) != 6 {
		t.Fatalf("dimensions = %d, want 6", len(centroid))
	}

	norm := 0.0
	for _, v := range centroid {
		norm += v * v
	}
	if norm == 0 {
		t.Error("single pitch class must map to a nonzero centroid")
	}
}

func TestTonnetzSilence(t *testing.T) {
	tz := NewTonnetz()

	centroid := tz.Compute(make([]float64, 12))
	for d, v := range centroid {
		if v != 0 {
			t.Errorf("dimension %d = %g, silence must map to zeros", d, v)
		}
	}
}

func TestTonnetzFrames(t *testing.T) {
	sampleRate := 22050
	signal := sineWave(22050, 261.63, sampleRate) // C4

	stft := spectral.NewSTFT()
	result, err := stft.Compute(signal, 2048, 512, sampleRate)
	if err != nil {
		t.Fatal(err)
	}

	cs := NewChromaSTFT(sampleRate)
	chromagram := cs.ComputeFromSTFT(result)

	tz := NewTonnetz()
	frames := tz.ComputeFrames(chromagram)
	if len(frames) != result.TimeFrames {
		t.Fatalf("frames = %d, want %d", len(frames), result.TimeFrames)
	}
	for _, frame := range frames {
		if len(frame) != 6 {
			t.Fatalf("dimensions = %d, want 6", len(frame))
		}
	}
}
