// Package sampling crops aligned variable-length sequences to a fixed
// length. The random source is always passed in so runs are reproducible.
package sampling

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/RyanBlaney/sonido-enhance/logging"
	"gonum.org/v1/gonum/mat"
)

// DefaultFrames is the frame count used for training windows.
const DefaultFrames = 128

var (
	// ErrLengthMismatch is returned when paired inputs differ in length or shape.
	ErrLengthMismatch = errors.New("sampling: paired inputs differ in length")
	// ErrTooShort is returned when an input is shorter than the requested window.
	ErrTooShort = errors.New("sampling: input shorter than sample length")
	// ErrNilSample is returned when a dataset holds a nil matrix.
	ErrNilSample = errors.New("sampling: nil sample")
	// ErrInvalidLength is returned for a non-positive sample length.
	ErrInvalidLength = errors.New("sampling: sample length must be positive")
)

// NewRand returns a deterministic generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

// SampleFixedLengthPair draws one start offset uniformly from
// [0, len(a)-n] and returns the window [start, start+n) of both a and b.
// The returned slices alias the inputs.
func SampleFixedLengthPair(rng *rand.Rand, a, b []float64, n int) ([]float64, []float64, error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("%w: got %d", ErrInvalidLength, n)
	}
	if len(a) != len(b) {
		return nil, nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(a), len(b))
	}
	if len(a) < n {
		return nil, nil, fmt.Errorf("%w: len(a) is %d, sample length is %d", ErrTooShort, len(a), n)
	}

	start := rng.IntN(len(a) - n + 1)
	logging.Debug("Random crop", logging.Fields{
		"component": "sampling",
		"start":     start,
		"length":    n,
	})

	end := start + n
	return a[start:end:end], b[start:end:end], nil
}

// SampleDatasetAligned crops every pair (datasetA[i], datasetB[i]) of
// bins x frames matrices to nFrames columns. Each pair gets its own
// offset, shared by both members. All results are fresh bins x nFrames
// matrices with a common bin count.
func SampleDatasetAligned(rng *rand.Rand, datasetA, datasetB []*mat.Dense, nFrames int) ([]*mat.Dense, []*mat.Dense, error) {
	if nFrames <= 0 {
		return nil, nil, fmt.Errorf("%w: got %d", ErrInvalidLength, nFrames)
	}
	if len(datasetA) != len(datasetB) {
		return nil, nil, fmt.Errorf("%w: %d vs %d samples", ErrLengthMismatch, len(datasetA), len(datasetB))
	}

	sampledA := make([]*mat.Dense, 0, len(datasetA))
	sampledB := make([]*mat.Dense, 0, len(datasetB))
	bins := -1

	for idx := range datasetA {
		dataA, dataB := datasetA[idx], datasetB[idx]
		if dataA == nil || dataB == nil {
			return nil, nil, fmt.Errorf("%w: sample %d", ErrNilSample, idx)
		}
		rowsA, framesA := dataA.Dims()
		rowsB, framesB := dataB.Dims()

		if framesA != framesB {
			return nil, nil, fmt.Errorf("%w: sample %d has %d and %d frames", ErrLengthMismatch, idx, framesA, framesB)
		}
		if rowsA != rowsB || (bins >= 0 && rowsA != bins) {
			return nil, nil, fmt.Errorf("%w: sample %d has %d and %d bins", ErrLengthMismatch, idx, rowsA, rowsB)
		}
		if framesA < nFrames {
			return nil, nil, fmt.Errorf("%w: sample %d has %d frames, need %d", ErrTooShort, idx, framesA, nFrames)
		}
		bins = rowsA

		start := rng.IntN(framesA - nFrames + 1)
		end := start + nFrames
		sampledA = append(sampledA, mat.DenseCopyOf(dataA.Slice(0, rowsA, start, end)))
		sampledB = append(sampledB, mat.DenseCopyOf(dataB.Slice(0, rowsB, start, end)))
	}

	return sampledA, sampledB, nil
}
