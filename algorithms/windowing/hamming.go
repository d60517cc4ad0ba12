package windowing

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrSizeMismatch is returned when a frame does not match the window length.
var ErrSizeMismatch = errors.New("windowing: frame length does not match window size")

// Hamming is the window 0.54 - 0.46*cos(2*pi*n/D).
//
// The periodic form (D = size) tiles cleanly under overlap and is the one
// the STFT uses; the symmetric form (D = size-1) has equal endpoints.
type Hamming struct {
	symmetric    bool
	coefficients []float64
}

// NewHamming creates a Hamming window of size samples.
func NewHamming(size int, symmetric bool) *Hamming {
	return &Hamming{
		symmetric:    symmetric,
		coefficients: hammingCoefficients(size, symmetric),
	}
}

// NewPeriodicHamming creates the periodic Hamming window used by the STFT.
func NewPeriodicHamming(size int) *Hamming {
	return NewHamming(size, false)
}

func hammingCoefficients(size int, symmetric bool) []float64 {
	coeffs := make([]float64, size)
	if size == 1 {
		coeffs[0] = 1
		return coeffs
	}

	d := float64(size)
	if symmetric {
		d--
	}
	for n := range coeffs {
		coeffs[n] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(n)/d)
	}
	return coeffs
}

// Apply returns a windowed copy of frame.
func (h *Hamming) Apply(frame []float64) ([]float64, error) {
	if len(frame) != len(h.coefficients) {
		return nil, fmt.Errorf("%w: %d samples, window has %d", ErrSizeMismatch, len(frame), len(h.coefficients))
	}
	return floats.MulTo(make([]float64, len(frame)), frame, h.coefficients), nil
}

// ApplyInPlace multiplies frame by the window.
func (h *Hamming) ApplyInPlace(frame []float64) error {
	if len(frame) != len(h.coefficients) {
		return fmt.Errorf("%w: %d samples, window has %d", ErrSizeMismatch, len(frame), len(h.coefficients))
	}
	floats.Mul(frame, h.coefficients)
	return nil
}

// SumSquare returns the overlap-added squared window for frames windows
// spaced hop samples apart. The result spans size + hop*(frames-1)
// samples and is the normalizer of a windowed inverse STFT.
func (h *Hamming) SumSquare(frames, hop int) []float64 {
	if frames <= 0 {
		return nil
	}
	size := len(h.coefficients)
	squared := floats.MulTo(make([]float64, size), h.coefficients, h.coefficients)

	out := make([]float64, size+hop*(frames-1))
	for i := range frames {
		floats.Add(out[i*hop:i*hop+size], squared)
	}
	return out
}

// Coefficient returns the i-th window coefficient.
func (h *Hamming) Coefficient(i int) float64 {
	return h.coefficients[i]
}

// GetCoefficients returns a copy of the window coefficients
func (h *Hamming) GetCoefficients() []float64 {
	return append([]float64(nil), h.coefficients...)
}

// GetSize returns the window size
func (h *Hamming) GetSize() int {
	return len(h.coefficients)
}

// IsSymmetric reports whether the window uses the symmetric definition.
func (h *Hamming) IsSymmetric() bool {
	return h.symmetric
}
