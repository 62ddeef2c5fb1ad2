package transcode

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestParseFFprobeOutput(t *testing.T) {
	jsonData := []byte(`{
		"streams": [{
			"codec_type": "audio",
			"codec_name": "mp3",
			"codec_long_name": "MP3 (MPEG audio layer 3)",
			"sample_rate": "44100",
			"channels": 2,
			"duration": "12.5",
			"bit_rate": "128000"
		}]
	}`)

	metadata, err := parseFFprobeOutput(jsonData)
	if err != nil {
		t.Fatalf("parseFFprobeOutput: %v", err)
	}
	if metadata.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", metadata.SampleRate)
	}
	if metadata.Channels != 2 {
		t.Errorf("Channels = %d, want 2", metadata.Channels)
	}
	if metadata.Codec != "mp3" {
		t.Errorf("Codec = %q", metadata.Codec)
	}
	if metadata.Duration != 12.5 {
		t.Errorf("Duration = %g, want 12.5", metadata.Duration)
	}
	if metadata.Bitrate != 128000 {
		t.Errorf("Bitrate = %d", metadata.Bitrate)
	}
}

func TestParseFFprobeOutputErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", "not json"},
		{"no streams", `{"streams": []}`},
		{"video stream", `{"streams": [{"codec_type": "video", "channels": 2}]}`},
		{"zero channels", `{"streams": [{"codec_type": "audio", "channels": 0}]}`},
		{"too many channels", `{"streams": [{"codec_type": "audio", "channels": 16}]}`},
	}
	for _, c := range cases {
		if _, err := parseFFprobeOutput([]byte(c.data)); err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
}

func TestBytesToFloat64(t *testing.T) {
	values := []float64{0, 0.5, -1, 1e-6}
	data := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(v))
	}

	samples := bytesToFloat64(data)
	if len(samples) != len(values) {
		t.Fatalf("samples = %d, want %d", len(samples), len(values))
	}
	for i, want := range values {
		if samples[i] != want {
			t.Errorf("sample[%d] = %g, want %g", i, samples[i], want)
		}
	}
}

func TestBytesToFloat64DropsPartialSample(t *testing.T) {
	data := make([]byte, 20) // two full samples plus four stray bytes
	samples := bytesToFloat64(data)
	if len(samples) != 2 {
		t.Errorf("samples = %d, want 2", len(samples))
	}
}

func TestBytesToFloat64ZeroesNonFinite(t *testing.T) {
	values := []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0.25}
	data := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(v))
	}

	samples := bytesToFloat64(data)
	for i := 0; i < 3; i++ {
		if samples[i] != 0 {
			t.Errorf("sample[%d] = %g, non-finite input must become 0", i, samples[i])
		}
	}
	if samples[3] != 0.25 {
		t.Errorf("sample[3] = %g, want 0.25", samples[3])
	}
}

func TestDefaultDecoderConfig(t *testing.T) {
	config := DefaultDecoderConfig()
	if config.TargetSampleRate != 22050 {
		t.Errorf("TargetSampleRate = %d, want 22050", config.TargetSampleRate)
	}
	if config.FFmpegPath == "" || config.FFprobePath == "" {
		t.Error("tool paths must default")
	}
}
