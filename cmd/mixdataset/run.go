package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"path/filepath"
	"sort"

	"github.com/RyanBlaney/sonido-enhance/algorithms/mixing"
	"github.com/RyanBlaney/sonido-enhance/algorithms/sampling"
	"github.com/RyanBlaney/sonido-enhance/algorithms/spectral"
	"github.com/RyanBlaney/sonido-enhance/config"
	"github.com/RyanBlaney/sonido-enhance/dataset"
	"github.com/RyanBlaney/sonido-enhance/logging"
	"github.com/RyanBlaney/sonido-enhance/timing"
	"github.com/RyanBlaney/sonido-enhance/transcode"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Summary describes a finished run.
type Summary struct {
	Pairs    int
	NoisyDir string
	CleanDir string
	Skipped  int
	Seconds  float64
}

type noise struct {
	name string
	pcm  []float64
}

func run(cfg *config.PipelineConfig, progress io.Writer) (*Summary, error) {
	timer := timing.NewExecutionTime()
	logger := logging.WithFields(logging.Fields{
		"component": "mixdataset",
		"clean_dir": cfg.CleanDir,
		"noise_dir": cfg.NoiseDir,
	})

	dirs, err := dataset.PrepareEmptyDirs([]string{
		filepath.Join(cfg.OutputDir, "noisy"),
		filepath.Join(cfg.OutputDir, "clean"),
	})
	if err != nil {
		return nil, err
	}
	noisyDir, cleanDir := dirs[0], dirs[1]

	cleanPaths, err := dataset.FindWavFiles(cfg.CleanDir, dataset.WavExt, 0, cfg.Offset)
	if err != nil {
		return nil, err
	}
	cleanFiles, err := dataset.LoadWavFiles(cleanPaths, dataset.LoadOptions{
		Limit:           cfg.Limit,
		SampleRate:      cfg.SampleRate,
		MinimumSampling: cfg.MinimumSampling,
		Progress:        progress,
	})
	if errors.Is(err, dataset.ErrInsufficientFiles) {
		logger.Warn("Fewer clean files than requested", logging.Fields{
			"requested": cfg.Limit,
			"loaded":    len(cleanFiles),
		})
	} else if err != nil {
		return nil, fmt.Errorf("load clean files from %s: %w", cfg.CleanDir, err)
	}
	if len(cleanFiles) == 0 {
		return nil, fmt.Errorf("no clean files of at least %d samples in %s", cfg.MinimumSampling, cfg.CleanDir)
	}

	noisePaths, err := dataset.FindWavFiles(cfg.NoiseDir, dataset.WavExt, 0, 0)
	if err != nil {
		return nil, err
	}
	noiseMap, err := dataset.LoadNoisesTo(noisePaths, progress)
	if err != nil {
		return nil, err
	}
	noises := sortedNoises(noiseMap)
	if len(noises) == 0 {
		return nil, fmt.Errorf("no noise files in %s", cfg.NoiseDir)
	}
	if cfg.SampleRate != dataset.DefaultSampleRate {
		for i := range noises {
			if noises[i].pcm, err = transcode.Resample(noises[i].pcm, dataset.DefaultSampleRate, cfg.SampleRate); err != nil {
				return nil, err
			}
		}
	}

	logger.Info("Mixing dataset", logging.Fields{
		"clean_files": len(cleanFiles),
		"noise_files": len(noises),
		"snrs":        cfg.SNRs,
	})

	rng := sampling.NewRand(cfg.Seed)
	summary := &Summary{NoisyDir: noisyDir, CleanDir: cleanDir}

	for _, clean := range cleanFiles {
		cleanName, _ := dataset.NameAndExt(clean.Path)
		for _, n := range noises {
			if floats.Dot(n.pcm, n.pcm) == 0 {
				logger.Warn("Skipping silent noise", logging.Fields{"noise": n.name})
				summary.Skipped++
				continue
			}
			_, aligned, err := mixing.CorrectedLength(clean.PCM, rotate(rng, n.pcm))
			if err != nil {
				return nil, fmt.Errorf("align %s with %s: %w", cleanName, n.name, err)
			}

			for _, snr := range cfg.SNRs {
				mix, err := mixing.AddNoise(clean.PCM, aligned, snr)
				if err != nil {
					return nil, fmt.Errorf("mix %s with %s: %w", cleanName, n.name, err)
				}
				target := append([]float64(nil), clean.PCM...)
				normalizePeak(mix, target)

				name := fmt.Sprintf("%s_%s_%gdB%s", cleanName, n.name, snr, dataset.WavExt)
				if err := transcode.SaveWav(filepath.Join(noisyDir, name), mix, cfg.SampleRate); err != nil {
					return nil, err
				}
				if err := transcode.SaveWav(filepath.Join(cleanDir, name), target, cfg.SampleRate); err != nil {
					return nil, err
				}
				summary.Pairs++
			}
		}
	}

	files, err := dataset.FindAlignedWavFiles(noisyDir, cleanDir, 0, 0)
	if err != nil {
		return nil, err
	}
	if files.Length != summary.Pairs {
		return nil, fmt.Errorf("%w: wrote %d pairs but found %d", dataset.ErrMisaligned, summary.Pairs, files.Length)
	}

	if err := checkWindows(rng, files, cfg); err != nil {
		return nil, err
	}

	summary.Seconds = timer.Duration()
	logger.Info("Mixing finished", logging.Fields{
		"pairs":   summary.Pairs,
		"skipped": summary.Skipped,
		"seconds": summary.Seconds,
	})
	return summary, nil
}

func sortedNoises(m map[string][]float64) []noise {
	out := make([]noise, 0, len(m))
	for name, pcm := range m {
		out = append(out, noise{name: name, pcm: pcm})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// rotate returns pcm started at a random sample and wrapped around.
func rotate(rng *rand.Rand, pcm []float64) []float64 {
	start := rng.IntN(len(pcm))
	out := make([]float64, 0, len(pcm))
	out = append(out, pcm[start:]...)
	return append(out, pcm[:start]...)
}

// normalizePeak scales mix and clean by the same factor when the mixture
// would clip.
func normalizePeak(mix, clean []float64) {
	peak := floats.Norm(mix, math.Inf(1))
	if peak <= 1 {
		return
	}
	floats.Scale(1/peak, mix)
	floats.Scale(1/peak, clean)
}

// checkWindows reloads the first written pair and draws one aligned
// training window from its log-power spectra.
func checkWindows(rng *rand.Rand, files *dataset.AlignedFiles, cfg *config.PipelineConfig) error {
	if files.Length == 0 {
		return nil
	}
	pair := files.Pairs()[0]

	var spectra [2]*mat.Dense
	for i, path := range pair {
		pcm, err := transcode.LoadWav(path, cfg.SampleRate)
		if err != nil {
			return err
		}
		lps, err := spectral.LogPowerSpectrum(pcm, 0)
		if err != nil {
			return fmt.Errorf("spectrum of %s: %w", path, err)
		}
		spectra[i] = lps
	}

	if _, frames := spectra[0].Dims(); frames < cfg.NFrames {
		logging.Debug("Pair shorter than a training window", logging.Fields{"frames": frames, "n_frames": cfg.NFrames})
		return nil
	}

	noisy, clean, err := sampling.SampleDatasetAligned(rng, spectra[:1], spectra[1:], cfg.NFrames)
	if err != nil {
		return fmt.Errorf("sample %s: %w", filepath.Base(pair[0]), err)
	}
	bins, frames := noisy[0].Dims()
	cleanBins, cleanFrames := clean[0].Dims()
	logging.Debug("Training window", logging.Fields{
		"noisy": fmt.Sprintf("%dx%d", bins, frames),
		"clean": fmt.Sprintf("%dx%d", cleanBins, cleanFrames),
	})
	return nil
}
