package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Analysis parameters shared by LogPowerSpectrum, Phase and RebuildWaveform.
// Reconstruction is only phase-consistent when all three agree.
const (
	NFFT              = 512
	HopLength         = 256
	FreqBins          = NFFT/2 + 1
	DefaultSampleRate = 16000
)

func analysis() *STFT {
	return NewSTFT(NFFT, HopLength, DefaultSampleRate)
}

// Magnitude returns |STFT(y)| as a FreqBins x frames matrix.
func Magnitude(y []float64) (*mat.Dense, error) {
	res, err := analysis().Compute(y)
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(res.FreqBins, res.TimeFrames, nil)
	for t, frame := range res.Magnitude {
		out.SetCol(t, frame)
	}
	return out, nil
}

// LogPowerSpectrum returns log(|STFT(y)|^2) as a FreqBins x frames matrix.
// With pad > 0, pad zero columns are added before and after the frames.
// Silent bins produce -Inf.
func LogPowerSpectrum(y []float64, pad int) (*mat.Dense, error) {
	if pad < 0 {
		return nil, fmt.Errorf("spectral: negative pad %d", pad)
	}

	res, err := analysis().Compute(y)
	if err != nil {
		return nil, err
	}

	lps := mat.NewDense(res.FreqBins, pad+res.TimeFrames+pad, nil)
	for t, frame := range res.Magnitude {
		for f, m := range frame {
			lps.Set(f, pad+t, math.Log(m*m))
		}
	}
	return lps, nil
}

// SpectrumToMagnitude inverts the log-power mapping: sqrt(exp(lps)).
func SpectrumToMagnitude(lps mat.Matrix) *mat.Dense {
	var mag mat.Dense
	mag.Apply(func(_, _ int, v float64) float64 {
		return math.Sqrt(math.Exp(v))
	}, lps)
	return &mag
}

// Phase returns the unit-modulus phase of STFT(y), shaped like Magnitude.
func Phase(y []float64) (*mat.CDense, error) {
	res, err := analysis().Compute(y)
	if err != nil {
		return nil, err
	}

	phase := mat.NewCDense(res.FreqBins, res.TimeFrames, nil)
	for t, frame := range res.Complex {
		for f, c := range frame {
			phase.Set(f, t, unitPhase(c))
		}
	}
	return phase, nil
}

// RebuildWaveform runs the inverse STFT on magnitude*phase. Both matrices
// must be FreqBins x frames.
func RebuildWaveform(magnitude mat.Matrix, phase mat.CMatrix) ([]float64, error) {
	rows, cols := magnitude.Dims()
	prows, pcols := phase.Dims()
	if rows != prows || cols != pcols {
		return nil, fmt.Errorf("%w: magnitude %dx%d, phase %dx%d", ErrShapeMismatch, rows, cols, prows, pcols)
	}
	if rows != FreqBins {
		return nil, fmt.Errorf("%w: %d bins, want %d", ErrShapeMismatch, rows, FreqBins)
	}

	spectrum := make([][]complex128, cols)
	for t := range cols {
		frame := make([]complex128, rows)
		for f := range rows {
			frame[f] = complex(magnitude.At(f, t), 0) * phase.At(f, t)
		}
		spectrum[t] = frame
	}

	return analysis().Inverse(spectrum)
}
