package spectral

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-enhance/algorithms/windowing"
	"github.com/RyanBlaney/sonido-enhance/logging"
	"gonum.org/v1/gonum/floats"
)

var (
	// ErrEmptySignal is returned when a transform receives no samples.
	ErrEmptySignal = errors.New("spectral: empty signal")
	// ErrInvalidFrame is returned for non-positive or odd window sizes and
	// non-positive hop sizes.
	ErrInvalidFrame = errors.New("spectral: invalid window or hop size")
	// ErrShapeMismatch is returned when spectra do not share a shape.
	ErrShapeMismatch = errors.New("spectral: shape mismatch")
)

// smallest normal float64; window envelopes at or below it are left unnormalized
const tinyFloat64 = 2.2250738585072014e-308

// STFT provides a centered Short-Time Fourier Transform and its inverse.
// Frames are taken every hopSize samples after reflect-padding the signal
// by windowSize/2 on both ends, so frame t is centered on sample t*hopSize.
type STFT struct {
	fft        *FFT
	window     *windowing.Hamming
	windowSize int
	hopSize    int
	sampleRate int
	logger     logging.Logger
}

// STFTResult holds the result of STFT analysis
type STFTResult struct {
	Magnitude      [][]float64    `json:"magnitude"`       // Time x Frequency magnitude matrix
	Phase          [][]float64    `json:"phase"`           // Time x Frequency phase angle matrix
	Complex        [][]complex128 `json:"-"`               // Raw complex spectrogram (not serialized)
	TimeFrames     int            `json:"time_frames"`     // Number of time frames
	FreqBins       int            `json:"freq_bins"`       // Number of frequency bins
	SampleRate     int            `json:"sample_rate"`     // Sample rate
	WindowSize     int            `json:"window_size"`     // FFT window size
	HopSize        int            `json:"hop_size"`        // Hop size between frames
	FreqResolution float64        `json:"freq_resolution"` // Frequency resolution (Hz/bin)
	TimeResolution float64        `json:"time_resolution"` // Time resolution (seconds/frame)
}

// NewSTFT creates an STFT with a periodic Hamming window of windowSize.
func NewSTFT(windowSize, hopSize, sampleRate int) *STFT {
	s := &STFT{
		fft:        NewFFT(),
		windowSize: windowSize,
		hopSize:    hopSize,
		sampleRate: sampleRate,
		logger: logging.WithFields(logging.Fields{
			"component": "stft",
		}),
	}
	if windowSize > 0 {
		s.window = windowing.NewPeriodicHamming(windowSize)
	}
	return s
}

// FreqBins returns the number of non-negative frequency bins.
func (s *STFT) FreqBins() int { return s.windowSize/2 + 1 }

// NumFrames returns the frame count produced for a signal of n samples.
func (s *STFT) NumFrames(n int) int {
	return 1 + n/s.hopSize
}

func (s *STFT) validate() error {
	if s.windowSize <= 0 || s.windowSize%2 != 0 || s.hopSize <= 0 {
		return fmt.Errorf("%w: window=%d hop=%d", ErrInvalidFrame, s.windowSize, s.hopSize)
	}
	return nil
}

// Compute analyzes signal and returns a Time x Frequency spectrogram.
func (s *STFT) Compute(signal []float64) (*STFTResult, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	if len(signal) == 0 {
		return nil, ErrEmptySignal
	}

	padded := reflectPad(signal, s.windowSize/2)
	numFrames := s.NumFrames(len(signal))
	freqBins := s.FreqBins()

	magnitude := make([][]float64, numFrames)
	phase := make([][]float64, numFrames)
	complexSpectrum := make([][]complex128, numFrames)

	for frameIdx := range numFrames {
		start := frameIdx * s.hopSize
		frameBuffer, err := s.window.Apply(padded[start : start+s.windowSize])
		if err != nil {
			return nil, err
		}

		fftResult := s.fft.Compute(frameBuffer)

		magnitude[frameIdx] = make([]float64, freqBins)
		phase[frameIdx] = make([]float64, freqBins)
		complexSpectrum[frameIdx] = make([]complex128, freqBins)
		for i := range freqBins {
			complexSpectrum[frameIdx][i] = fftResult[i]
			magnitude[frameIdx][i] = cmplx.Abs(fftResult[i])
			phase[frameIdx][i] = cmplx.Phase(fftResult[i])
		}
	}

	s.logger.Debug("STFT computed", logging.Fields{
		"samples": len(signal),
		"frames":  numFrames,
		"bins":    freqBins,
	})

	result := &STFTResult{
		Magnitude:  magnitude,
		Phase:      phase,
		Complex:    complexSpectrum,
		TimeFrames: numFrames,
		FreqBins:   freqBins,
		SampleRate: s.sampleRate,
		WindowSize: s.windowSize,
		HopSize:    s.hopSize,
	}
	if s.sampleRate > 0 {
		result.FreqResolution = float64(s.sampleRate) / float64(s.windowSize)
		result.TimeResolution = float64(s.hopSize) / float64(s.sampleRate)
	}

	return result, nil
}

// Inverse synthesizes a waveform from a Time x Frequency spectrogram using
// windowed overlap-add normalized by the summed squared window. The
// centering pad is trimmed, so the output holds hopSize*(frames-1) samples.
func (s *STFT) Inverse(spectrum [][]complex128) ([]float64, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	numFrames := len(spectrum)
	if numFrames == 0 {
		return nil, ErrEmptySignal
	}

	freqBins := s.FreqBins()
	for i, frame := range spectrum {
		if len(frame) != freqBins {
			return nil, fmt.Errorf("%w: frame %d has %d bins, want %d", ErrShapeMismatch, i, len(frame), freqBins)
		}
	}

	windowSum := s.window.SumSquare(numFrames, s.hopSize)
	fullLen := len(windowSum)
	signal := make([]float64, fullLen)

	for i, frame := range spectrum {
		buf := s.fft.InverseHalfSpectrum(frame, s.windowSize)
		if err := s.window.ApplyInPlace(buf); err != nil {
			return nil, err
		}
		offset := i * s.hopSize
		floats.Add(signal[offset:offset+s.windowSize], buf)
	}

	for i := range signal {
		if windowSum[i] > tinyFloat64 {
			signal[i] /= windowSum[i]
		}
	}

	half := s.windowSize / 2
	out := make([]float64, fullLen-2*half)
	copy(out, signal[half:fullLen-half])

	s.logger.Debug("ISTFT computed", logging.Fields{
		"frames":  numFrames,
		"samples": len(out),
	})

	return out, nil
}

// reflectPad mirrors pad samples at each end without repeating the edge
// sample: [3 2 | 1 2 3 4 | 3 2] for pad 2. A pad longer than the signal
// keeps reflecting back and forth, and a single sample is repeated.
func reflectPad(signal []float64, pad int) []float64 {
	n := len(signal)
	out := make([]float64, n+2*pad)
	copy(out[pad:], signal)
	if pad == 0 || n == 0 {
		return out
	}
	if n == 1 {
		for i := range pad {
			out[i], out[n+pad+i] = signal[0], signal[0]
		}
		return out
	}

	period := 2 * (n - 1)
	mirror := func(i int) float64 {
		j := ((i % period) + period) % period
		if j >= n {
			j = period - j
		}
		return signal[j]
	}
	for i := range pad {
		out[i] = mirror(i - pad)
		out[n+pad+i] = mirror(n + i)
	}
	return out
}

// unitPhase returns e^(i*arg(c)), with 1 for a zero bin.
func unitPhase(c complex128) complex128 {
	if c == 0 {
		return 1
	}
	return cmplx.Rect(1, math.Atan2(imag(c), real(c)))
}
