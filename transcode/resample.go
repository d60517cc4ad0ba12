package transcode

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/resample"
)

// ErrInvalidRate indicates a non-positive sample rate.
var ErrInvalidRate = errors.New("transcode: invalid sample rate")

// ResampleQuality is the anti-aliasing profile used by Resample.
const ResampleQuality = resample.QualityBest

// Resample converts mono samples from inRate to outRate with a band-limited
// polyphase FIR. The filter's group delay is removed, so sample i of the
// output lines up with time i/outRate of the input to within half an
// output sample. The output holds ceil(len(samples)*outRate/inRate)
// samples; equal rates return a copy.
func Resample(samples []float64, inRate, outRate int) ([]float64, error) {
	if inRate <= 0 || outRate <= 0 {
		return nil, ErrInvalidRate
	}
	if inRate == outRate || len(samples) == 0 {
		return append([]float64(nil), samples...), nil
	}

	r, err := resample.NewRational(outRate, inRate, resample.WithQuality(ResampleQuality))
	if err != nil {
		return nil, fmt.Errorf("resample %d -> %d Hz: %w", inRate, outRate, err)
	}
	up, down := r.Ratio()

	want := int((int64(len(samples))*int64(up) + int64(down) - 1) / int64(down))
	// the prototype is linear phase, centered at (taps-1)/2 on the up-sampled grid
	delay := float64(len(r.Prototype())-1) / 2 / float64(down)
	skip := int(math.Round(delay))

	// zero tail long enough for skip+want outputs after the delay is dropped
	tail := (skip+2)*down/up + 2
	padded := make([]float64, len(samples)+tail)
	copy(padded, samples)

	out := r.Process(padded)
	if len(out) < skip+want {
		out = append(out, make([]float64, skip+want-len(out))...)
	}
	return out[skip : skip+want : skip+want], nil
}
