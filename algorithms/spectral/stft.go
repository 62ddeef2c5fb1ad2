package spectral

import (
	"fmt"
	"math/cmplx"
	"runtime"
	"sync"

	"github.com/voicecast/audioml/algorithms/windowing"
)

// STFT provides Short-Time Fourier Transform analysis and synthesis
type STFT struct {
	fft *FFT
}

// STFTResult holds the result of STFT analysis
type STFTResult struct {
	Magnitude      [][]float64    `json:"magnitude"`       // Time x Frequency magnitude matrix
	Phase          [][]float64    `json:"phase"`           // Time x Frequency phase matrix
	Complex        [][]complex128 `json:"-"`               // Raw complex spectrogram (not serialized)
	TimeFrames     int            `json:"time_frames"`     // Number of time frames
	FreqBins       int            `json:"freq_bins"`       // Number of frequency bins
	SampleRate     int            `json:"sample_rate"`     // Sample rate
	WindowSize     int            `json:"window_size"`     // FFT window size
	HopSize        int            `json:"hop_size"`        // Hop size between frames
	FreqResolution float64        `json:"freq_resolution"` // Frequency resolution (Hz/bin)
	TimeResolution float64        `json:"time_resolution"` // Time resolution (seconds/frame)
}

// Window interface for windowing functions
type Window interface {
	ApplyInPlace(signal []float64) error
}

// NewSTFT creates a new STFT calculator
func NewSTFT() *STFT {
	return &STFT{
		fft: NewFFT(),
	}
}

// NumFrames returns the number of analysis frames an STFT of a signal with
// the given length produces. Frame counts depend only on signal length,
// window size and hop size, so feature dimensions are reproducible from
// configuration alone.
func NumFrames(signalLength, windowSize, hopSize int) int {
	if signalLength < windowSize || hopSize <= 0 {
		return 0
	}
	return (signalLength-windowSize)/hopSize + 1
}

// Compute computes the STFT with a periodic Hann window
func (s *STFT) Compute(signal []float64, windowSize, hopSize, sampleRate int) (*STFTResult, error) {
	return s.ComputeWithWindow(signal, windowSize, hopSize, sampleRate, windowing.NewHann(windowSize))
}

// ComputeWithWindow computes the STFT with parallel frame processing and a
// custom window
func (s *STFT) ComputeWithWindow(signal []float64, windowSize int, hopSize int, sampleRate int, window Window) (*STFTResult, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive")
	}

	if hopSize <= 0 {
		return nil, fmt.Errorf("hop size must be positive")
	}

	numFrames := NumFrames(len(signal), windowSize, hopSize)
	if numFrames <= 0 {
		return nil, fmt.Errorf("signal too short for given window size and hop size")
	}

	// Positive frequencies only
	freqBins := windowSize/2 + 1

	magnitude := make([][]float64, numFrames)
	phase := make([][]float64, numFrames)
	complexSpectrum := make([][]complex128, numFrames)

	for i := 0; i < numFrames; i++ {
		magnitude[i] = make([]float64, freqBins)
		phase[i] = make([]float64, freqBins)
		complexSpectrum[i] = make([]complex128, freqBins)
	}

	numWorkers := s.workerCount(numFrames)

	type frameJob struct {
		frameIdx int
		startIdx int
		endIdx   int
	}

	jobs := make(chan frameJob, numFrames)

	var wg sync.WaitGroup

	for _i := 0; _i < numWorkers; _i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Reuse frame buffer for this worker
			frameBuffer := make([]float64, windowSize)

			for job := range jobs {
				if job.endIdx > len(signal) {
					continue
				}

				copy(frameBuffer, signal[job.startIdx:job.endIdx])

				if window != nil {
					if err := window.ApplyInPlace(frameBuffer); err != nil {
						continue
					}
				}

				fftResult := s.fft.Compute(frameBuffer)

				for i := 0; i < freqBins; i++ {
					complexSpectrum[job.frameIdx][i] = fftResult[i]
					magnitude[job.frameIdx][i] = cmplx.Abs(fftResult[i])
					phase[job.frameIdx][i] = cmplx.Phase(fftResult[i])
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for frameIdx := 0; frameIdx < numFrames; frameIdx++ {
			startIdx := frameIdx * hopSize
			endIdx := startIdx + windowSize

			if endIdx <= len(signal) {
				jobs <- frameJob{
					frameIdx: frameIdx,
					startIdx: startIdx,
					endIdx:   endIdx,
				}
			}
		}
	}()

	wg.Wait()

	result := &STFTResult{
		Magnitude:      magnitude,
		Phase:          phase,
		Complex:        complexSpectrum,
		TimeFrames:     numFrames,
		FreqBins:       freqBins,
		SampleRate:     sampleRate,
		WindowSize:     windowSize,
		HopSize:        hopSize,
		FreqResolution: float64(sampleRate) / float64(windowSize),
		TimeResolution: float64(hopSize) / float64(sampleRate),
	}

	return result, nil
}

// Inverse reconstructs a time-domain signal from a complex spectrogram of
// positive-frequency bins using windowed overlap-add. The spectrogram frames
// may use a different hop than the analysis hop; this is what the phase
// vocoder relies on for time stretching.
func (s *STFT) Inverse(complexSpectrum [][]complex128, windowSize, hopSize int) []float64 {
	if len(complexSpectrum) == 0 || windowSize <= 0 || hopSize <= 0 {
		return []float64{}
	}

	numFrames := len(complexSpectrum)
	outLength := (numFrames-1)*hopSize + windowSize
	output := make([]float64, outLength)
	windowSum := make([]float64, outLength)

	window := windowing.NewHann(windowSize)
	coeffs := window.Coefficients()

	fullSpectrum := make([]complex128, windowSize)

	for t, frame := range complexSpectrum {
		// Rebuild the full spectrum from positive frequencies via
		// conjugate symmetry
		for i := 0; i < windowSize; i++ {
			fullSpectrum[i] = 0
		}
		for i, c := range frame {
			if i >= windowSize {
				break
			}
			fullSpectrum[i] = c
			if i > 0 && windowSize-i > i {
				fullSpectrum[windowSize-i] = cmplx.Conj(c)
			}
		}

		samples := s.fft.ComputeInverseReal(fullSpectrum)

		offset := t * hopSize
		for i := 0; i < windowSize; i++ {
			if offset+i >= outLength || i >= len(samples) {
				break
			}
			output[offset+i] += samples[i] * coeffs[i]
			windowSum[offset+i] += coeffs[i] * coeffs[i]
		}
	}

	// Normalize by the accumulated squared window
	for i := range output {
		if windowSum[i] > 1e-9 {
			output[i] /= windowSum[i]
		}
	}

	return output
}

// workerCount determines the number of workers for the frame fan-out
func (s *STFT) workerCount(numFrames int) int {
	numCPU := runtime.NumCPU()

	if numFrames < 100 {
		return max(1, min(numCPU/2, numFrames))
	}

	if numFrames < 1000 {
		return min(numCPU, 8)
	}

	return numCPU
}
