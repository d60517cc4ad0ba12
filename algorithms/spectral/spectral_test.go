package spectral

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/RyanBlaney/sonido-enhance/internal/testutil"
	"gonum.org/v1/gonum/mat"
)

func TestReflectPad(t *testing.T) {
	tests := []struct {
		name   string
		signal []float64
		pad    int
		want   []float64
	}{
		{"interior", []float64{1, 2, 3, 4}, 2, []float64{3, 2, 1, 2, 3, 4, 3, 2}},
		{"pad longer than signal", []float64{1, 2}, 3, []float64{2, 1, 2, 1, 2, 1, 2, 1}},
		{"wraps twice", []float64{1, 2, 3}, 5, []float64{2, 1, 2, 3, 2, 1, 2, 3, 2, 1, 2, 3, 2}},
		{"single sample", []float64{7}, 2, []float64{7, 7, 7, 7, 7}},
		{"no pad", []float64{1, 2}, 0, []float64{1, 2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			testutil.RequireSliceNearlyEqual(t, reflectPad(tc.signal, tc.pad), tc.want, 0)
		})
	}
}

func TestSTFTShortSignals(t *testing.T) {
	for _, n := range []int{1, 100, 255, 256, 257} {
		s := analysis()
		res, err := s.Compute(testutil.DeterministicNoise(3, 0.5, n))
		if err != nil {
			t.Fatalf("Compute(%d samples) error = %v", n, err)
		}
		if res.TimeFrames != s.NumFrames(n) || res.TimeFrames != 1+n/HopLength {
			t.Fatalf("%d samples: frames = %d, want %d", n, res.TimeFrames, 1+n/HopLength)
		}
		for _, frame := range res.Magnitude {
			testutil.RequireFinite(t, frame)
		}
	}
}

func TestSTFTShape(t *testing.T) {
	tests := []struct {
		samples    int
		wantFrames int
	}{
		{257, 2},
		{4096, 17},
		{16000, 63},
	}
	for _, tc := range tests {
		y := testutil.DeterministicNoise(1, 0.5, tc.samples)
		res, err := analysis().Compute(y)
		if err != nil {
			t.Fatalf("Compute(%d) error = %v", tc.samples, err)
		}
		if res.TimeFrames != tc.wantFrames || len(res.Complex) != tc.wantFrames {
			t.Fatalf("samples=%d: frames = %d, want %d", tc.samples, res.TimeFrames, tc.wantFrames)
		}
		if res.FreqBins != FreqBins || len(res.Complex[0]) != FreqBins {
			t.Fatalf("bins = %d, want %d", res.FreqBins, FreqBins)
		}
		if res.FreqResolution != 31.25 {
			t.Fatalf("freq resolution = %v, want 31.25", res.FreqResolution)
		}
	}
}

func TestSTFTRejectsBadInput(t *testing.T) {
	if _, err := analysis().Compute(nil); !errors.Is(err, ErrEmptySignal) {
		t.Fatalf("empty: err = %v", err)
	}
	if _, err := NewSTFT(511, 256, 16000).Compute(make([]float64, 2048)); !errors.Is(err, ErrInvalidFrame) {
		t.Fatalf("odd window: err = %v", err)
	}
	if _, err := NewSTFT(512, 0, 16000).Compute(make([]float64, 2048)); !errors.Is(err, ErrInvalidFrame) {
		t.Fatalf("zero hop: err = %v", err)
	}
}

func TestSineLandsInExpectedBin(t *testing.T) {
	// 1000 Hz at 16 kHz with 512-point frames is bin 32.
	y := testutil.DeterministicSine(1000, 16000, 0.8, 8192)
	mag, err := Magnitude(y)
	if err != nil {
		t.Fatalf("Magnitude() error = %v", err)
	}
	_, frames := mag.Dims()
	col := mat.Col(nil, frames/2, mag)
	peak := 0
	for i, v := range col {
		if v > col[peak] {
			peak = i
		}
	}
	if peak != 32 {
		t.Fatalf("peak bin = %d, want 32", peak)
	}
}

func TestLogPowerSpectrumRoundTrip(t *testing.T) {
	y := testutil.DeterministicNoise(7, 0.3, 4000)

	mag, err := Magnitude(y)
	if err != nil {
		t.Fatalf("Magnitude() error = %v", err)
	}
	lps, err := LogPowerSpectrum(y, 0)
	if err != nil {
		t.Fatalf("LogPowerSpectrum() error = %v", err)
	}

	back := SpectrumToMagnitude(lps)
	if !mat.EqualApprox(back, mag, 1e-9) {
		t.Fatal("SpectrumToMagnitude(LogPowerSpectrum(y)) differs from |STFT(y)|")
	}
}

func TestLogPowerSpectrumPadding(t *testing.T) {
	y := testutil.DeterministicNoise(3, 0.3, 2560)
	plain, err := LogPowerSpectrum(y, 0)
	if err != nil {
		t.Fatalf("LogPowerSpectrum() error = %v", err)
	}
	padded, err := LogPowerSpectrum(y, 3)
	if err != nil {
		t.Fatalf("LogPowerSpectrum(pad) error = %v", err)
	}

	rows, frames := plain.Dims()
	prows, pcols := padded.Dims()
	if prows != rows || pcols != frames+6 {
		t.Fatalf("padded shape = %dx%d, want %dx%d", prows, pcols, rows, frames+6)
	}
	for _, c := range []int{0, 1, 2, pcols - 3, pcols - 2, pcols - 1} {
		for r := range prows {
			if padded.At(r, c) != 0 {
				t.Fatalf("pad column %d row %d = %v, want 0", c, r, padded.At(r, c))
			}
		}
	}
	if !mat.Equal(padded.Slice(0, rows, 3, 3+frames), plain) {
		t.Fatal("interior of padded spectrum differs from unpadded spectrum")
	}

	if _, err := LogPowerSpectrum(y, -1); err == nil {
		t.Fatal("expected error for negative pad")
	}
}

func TestSilenceGivesNegativeInfinity(t *testing.T) {
	lps, err := LogPowerSpectrum(make([]float64, 1024), 0)
	if err != nil {
		t.Fatalf("LogPowerSpectrum() error = %v", err)
	}
	if !math.IsInf(lps.At(10, 1), -1) {
		t.Fatalf("lps of silence = %v, want -Inf", lps.At(10, 1))
	}
	if m := SpectrumToMagnitude(lps).At(10, 1); m != 0 {
		t.Fatalf("magnitude of silence = %v, want 0", m)
	}
}

func TestPhaseIsUnitModulus(t *testing.T) {
	y := testutil.DeterministicNoise(11, 0.5, 3000)
	ph, err := Phase(y)
	if err != nil {
		t.Fatalf("Phase() error = %v", err)
	}
	mag, _ := Magnitude(y)
	mr, mc := mag.Dims()
	pr, pc := ph.Dims()
	if mr != pr || mc != pc {
		t.Fatalf("phase shape %dx%d, magnitude %dx%d", pr, pc, mr, mc)
	}
	for r := range pr {
		for c := range pc {
			if d := math.Abs(cmplx.Abs(ph.At(r, c)) - 1); d > 1e-12 {
				t.Fatalf("|phase[%d,%d]| deviates from 1 by %v", r, c, d)
			}
		}
	}

	silent, err := Phase(make([]float64, 1024))
	if err != nil {
		t.Fatalf("Phase(silence) error = %v", err)
	}
	if silent.At(5, 1) != 1 {
		t.Fatalf("phase of zero bin = %v, want 1", silent.At(5, 1))
	}
}

func TestRebuildWaveformReconstructsSignal(t *testing.T) {
	tests := []struct {
		name string
		y    []float64
	}{
		{"noise", testutil.DeterministicNoise(5, 0.5, 4096)},
		{"sine", testutil.DeterministicSine(440, 16000, 0.7, 8192)},
		{"uneven", testutil.DeterministicNoise(9, 0.2, 5000)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mag, err := Magnitude(tc.y)
			if err != nil {
				t.Fatalf("Magnitude() error = %v", err)
			}
			ph, err := Phase(tc.y)
			if err != nil {
				t.Fatalf("Phase() error = %v", err)
			}

			rebuilt, err := RebuildWaveform(mag, ph)
			if err != nil {
				t.Fatalf("RebuildWaveform() error = %v", err)
			}
			wantLen := HopLength * (len(tc.y) / HopLength)
			if len(rebuilt) != wantLen {
				t.Fatalf("len = %d, want %d", len(rebuilt), wantLen)
			}
			testutil.RequireSliceNearlyEqual(t, rebuilt, tc.y[:wantLen], 1e-8)
		})
	}
}

func TestRebuildWaveformShapeMismatch(t *testing.T) {
	mag := mat.NewDense(FreqBins, 4, nil)
	ph := mat.NewCDense(FreqBins, 5, nil)
	if _, err := RebuildWaveform(mag, ph); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("err = %v, want ErrShapeMismatch", err)
	}

	small := mat.NewDense(10, 4, nil)
	if _, err := RebuildWaveform(small, mat.NewCDense(10, 4, nil)); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("err = %v, want ErrShapeMismatch", err)
	}
}

func TestInverseHalfSpectrum(t *testing.T) {
	f := NewFFT()
	x := testutil.DeterministicNoise(2, 1, 16)
	spec := f.Compute(x)
	got := f.InverseHalfSpectrum(spec[:9], 16)
	testutil.RequireSliceNearlyEqual(t, got, x, 1e-12)
}
