// Package mixing aligns noise recordings to clean speech and mixes them at
// a target signal-to-noise ratio.
package mixing

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrEmptyNoise is returned when a non-empty clean signal is paired
	// with a zero-length noise signal.
	ErrEmptyNoise = errors.New("mixing: empty noise signal")
	// ErrLengthMismatch is returned when signal and noise lengths differ.
	ErrLengthMismatch = errors.New("mixing: signal and noise lengths differ")
)

// CorrectedLength makes noise as long as clean. Longer noise is truncated;
// shorter noise is repeated cyclically and then truncated, never zero
// padded. clean is returned as given.
func CorrectedLength(clean, noise []float64) ([]float64, []float64, error) {
	switch {
	case len(clean) == len(noise):
		return clean, noise, nil
	case len(clean) < len(noise):
		return clean, noise[:len(clean):len(clean)], nil
	case len(noise) == 0:
		return nil, nil, fmt.Errorf("%w: clean has %d samples", ErrEmptyNoise, len(clean))
	}

	// noise plus floor(len(clean)/len(noise)) further copies always covers clean
	tiled := make([]float64, len(clean))
	for i := 0; i < len(tiled); i += len(noise) {
		copy(tiled[i:], noise)
	}
	return clean, tiled, nil
}

// NoiseScale returns the factor alpha such that signal + alpha*noise has a
// signal-to-noise ratio of db decibels. Silent noise yields +Inf and a
// silent signal with silent noise yields NaN.
func NoiseScale(signal, noise []float64, db float64) float64 {
	signalPower := floats.Dot(signal, signal)
	noisePower := floats.Dot(noise, noise)
	return math.Sqrt(signalPower / (noisePower * math.Pow(10, db/10)))
}

// AddNoise mixes noise into signal at db decibels SNR and returns the new
// mixture. The caller must ensure noise has non-zero energy; otherwise the
// mixture contains NaN or Inf samples.
func AddNoise(signal, noise []float64, db float64) ([]float64, error) {
	if len(signal) != len(noise) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(signal), len(noise))
	}

	alpha := NoiseScale(signal, noise, db)
	mix := make([]float64, len(signal))
	floats.AddScaledTo(mix, signal, alpha, noise)
	return mix, nil
}

// SNR returns 10*log10(sum(signal^2) / sum(noise^2)).
func SNR(signal, noise []float64) float64 {
	return 10 * math.Log10(floats.Dot(signal, signal)/floats.Dot(noise, noise))
}
