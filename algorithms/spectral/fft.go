package spectral

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT wraps mjibson/go-dsp for real-input analysis and Hermitian synthesis.
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the full complex spectrum of a real signal.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.FFTReal(x)
}

// ComputeInverse computes the inverse FFT, scaled by 1/len(x).
func (f *FFT) ComputeInverse(x []complex128) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.IFFT(x)
}

// InverseHalfSpectrum reconstructs a real frame of length n from its
// non-negative frequency bins (n/2+1 of them). The negative half is the
// conjugate mirror; imaginary parts of the DC and Nyquist bins are dropped.
func (f *FFT) InverseHalfSpectrum(half []complex128, n int) []float64 {
	if n == 0 {
		return []float64{}
	}

	full := make([]complex128, n)
	bins := n/2 + 1
	copy(full, half[:min(bins, len(half))])
	for k := 1; k < (n+1)/2; k++ {
		if k < len(half) {
			full[n-k] = cmplx.Conj(half[k])
		}
	}

	result := f.ComputeInverse(full)
	out := make([]float64, n)
	for i, val := range result {
		out[i] = real(val)
	}

	return out
}
