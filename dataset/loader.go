package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/RyanBlaney/sonido-enhance/logging"
	"github.com/RyanBlaney/sonido-enhance/transcode"
	"github.com/schollz/progressbar/v3"
)

// DefaultSampleRate is the rate waveforms are loaded at unless overridden.
const DefaultSampleRate = 16000

// ErrInsufficientFiles is returned by LoadWavs when a Limit was requested
// and the candidates run out before that many waveforms were accepted.
var ErrInsufficientFiles = errors.New("dataset: not enough files satisfy the minimum length")

// LoadOptions configures LoadWavs.
type LoadOptions struct {
	// Limit caps the number of waveforms kept; 0 means len(paths).
	Limit int
	// SampleRate is the load rate; 0 means DefaultSampleRate.
	SampleRate int
	// MinimumSampling rejects waveforms with fewer samples.
	MinimumSampling int
	// Progress receives the progress bar; nil means os.Stderr.
	Progress io.Writer
}

func newProgress(total int, desc string, w io.Writer) *progressbar.ProgressBar {
	if w == nil {
		w = os.Stderr
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
	)
}

// Waveform is a decoded file together with its source path.
type Waveform struct {
	Path string
	PCM  []float64
}

// LoadWavs loads paths in order and keeps every waveform holding at least
// MinimumSampling samples, stopping once Limit have been kept. The progress
// bar advances per accepted file. Without a Limit every qualifying file is
// kept; with one, exhausting the paths first returns the waveforms kept so
// far with ErrInsufficientFiles.
func LoadWavs(paths []string, opts LoadOptions) ([][]float64, error) {
	files, err := LoadWavFiles(paths, opts)
	wavs := make([][]float64, len(files))
	for i, f := range files {
		wavs[i] = f.PCM
	}
	return wavs, err
}

// LoadWavFiles is LoadWavs keeping the path of every accepted file.
func LoadWavFiles(paths []string, opts LoadOptions) ([]Waveform, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = len(paths)
	}
	sampleRate := opts.SampleRate
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	logger := logging.WithFields(logging.Fields{
		"component": "dataset",
		"function":  "LoadWavFiles",
	})

	decoder := transcode.NewDecoderForRate(sampleRate)
	bar := newProgress(limit, "Loading WAV files", opts.Progress)
	defer bar.Close()

	kept := make([]Waveform, 0, min(limit, len(paths)))
	for _, path := range paths {
		if len(kept) >= limit {
			break
		}

		data, err := decoder.DecodeFile(path)
		if err != nil {
			return kept, err
		}
		if len(data.PCM) < opts.MinimumSampling {
			logger.Debug("Skipping short file", logging.Fields{
				"path":    path,
				"samples": len(data.PCM),
				"minimum": opts.MinimumSampling,
			})
			continue
		}

		kept = append(kept, Waveform{Path: path, PCM: data.PCM})
		_ = bar.Add(1)
	}

	if opts.Limit > 0 && len(kept) < limit {
		return kept, fmt.Errorf("%w: kept %d of %d requested from %d candidates",
			ErrInsufficientFiles, len(kept), limit, len(paths))
	}

	logger.Debug("Loaded waveforms", logging.Fields{
		"kept":       len(kept),
		"candidates": len(paths),
	})
	return kept, nil
}

// LoadNoises loads every path at DefaultSampleRate, keyed by base name
// without extension. A later path with the same name replaces an earlier one.
func LoadNoises(paths []string) (map[string][]float64, error) {
	return LoadNoisesTo(paths, nil)
}

// LoadNoisesTo is LoadNoises with the progress bar written to progress.
func LoadNoisesTo(paths []string, progress io.Writer) (map[string][]float64, error) {
	decoder := transcode.NewDecoderForRate(DefaultSampleRate)
	bar := newProgress(len(paths), "Loading noises", progress)
	defer bar.Close()

	out := make(map[string][]float64, len(paths))
	for _, path := range paths {
		name, _ := NameAndExt(path)
		data, err := decoder.DecodeFile(path)
		if err != nil {
			return nil, err
		}
		if _, dup := out[name]; dup {
			logging.Warn("Duplicate noise name, keeping the later file", logging.Fields{
				"component": "dataset",
				"name":      name,
				"path":      path,
			})
		}
		out[name] = data.PCM
		_ = bar.Add(1)
	}
	return out, nil
}
