// Package config holds the settings shared by the data-preparation tools.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/RyanBlaney/sonido-enhance/algorithms/spectral"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "SONIDO_"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// PipelineConfig configures dataset preparation.
type PipelineConfig struct {
	// Audio. NFFT and HopLength must match the fixed spectral transform.
	SampleRate int `json:"sample_rate"`
	NFFT       int `json:"n_fft"`
	HopLength  int `json:"hop_length"`

	// Dataset selection
	CleanDir        string `json:"clean_dir"`
	NoiseDir        string `json:"noise_dir"`
	OutputDir       string `json:"output_dir"`
	Limit           int    `json:"limit"`            // 0 = all files
	Offset          int    `json:"offset"`           // files skipped before Limit applies
	MinimumSampling int    `json:"minimum_sampling"` // shortest accepted clean file, in samples

	// Mixing
	SNRs []float64 `json:"snrs"` // target SNRs in dB
	Seed uint64    `json:"seed"`

	// Training windows
	NFrames int `json:"n_frames"`

	LogLevel string `json:"log_level"`
}

// DefaultPipelineConfig returns 16 kHz, 512/256 STFT and a -5..15 dB SNR sweep.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		SampleRate:      16000,
		NFFT:            spectral.NFFT,
		HopLength:       spectral.HopLength,
		OutputDir:       "dataset",
		MinimumSampling: 16384,
		SNRs:            []float64{-5, 0, 5, 10, 15},
		Seed:            1,
		NFrames:         128,
		LogLevel:        "info",
	}
}

// LoadFile reads a JSON config from path on top of the defaults.
func LoadFile(path string) (*PipelineConfig, error) {
	cfg := DefaultPipelineConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from files into the process
// environment without overriding variables already set. Missing files are
// skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg fields from SONIDO_* environment variables, e.g.
// SONIDO_SAMPLE_RATE=8000 or SONIDO_SNRS=0,5,10.
func ApplyEnv(cfg *PipelineConfig) error {
	return applyLookup(cfg, os.LookupEnv)
}

func applyLookup(cfg *PipelineConfig, lookup func(string) (string, bool)) error {
	ints := map[string]*int{
		"SAMPLE_RATE":      &cfg.SampleRate,
		"N_FFT":            &cfg.NFFT,
		"HOP_LENGTH":       &cfg.HopLength,
		"LIMIT":            &cfg.Limit,
		"OFFSET":           &cfg.Offset,
		"MINIMUM_SAMPLING": &cfg.MinimumSampling,
		"N_FRAMES":         &cfg.NFrames,
	}
	for key, dst := range ints {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s=%q: %w", EnvPrefix, key, v, err)
		}
		*dst = n
	}

	strs := map[string]*string{
		"CLEAN_DIR":  &cfg.CleanDir,
		"NOISE_DIR":  &cfg.NoiseDir,
		"OUTPUT_DIR": &cfg.OutputDir,
		"LOG_LEVEL":  &cfg.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvPrefix + "SEED"); ok {
		seed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%sSEED=%q: %w", EnvPrefix, v, err)
		}
		cfg.Seed = seed
	}

	if v, ok := lookup(EnvPrefix + "SNRS"); ok {
		snrs, err := ParseSNRs(v)
		if err != nil {
			return fmt.Errorf("%sSNRS: %w", EnvPrefix, err)
		}
		cfg.SNRs = snrs
	}

	return nil
}

// ParseSNRs parses a comma separated dB list such as "-5,0,5".
func ParseSNRs(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Validate checks the fields every tool relies on.
func (c *PipelineConfig) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample_rate must be positive, got %d", ErrInvalidConfig, c.SampleRate)
	case c.NFFT != spectral.NFFT:
		return fmt.Errorf("%w: n_fft is fixed at %d, got %d", ErrInvalidConfig, spectral.NFFT, c.NFFT)
	case c.HopLength != spectral.HopLength:
		return fmt.Errorf("%w: hop_length is fixed at %d, got %d", ErrInvalidConfig, spectral.HopLength, c.HopLength)
	case c.Limit < 0 || c.Offset < 0:
		return fmt.Errorf("%w: limit and offset must be non-negative", ErrInvalidConfig)
	case c.NFrames <= 0:
		return fmt.Errorf("%w: n_frames must be positive, got %d", ErrInvalidConfig, c.NFrames)
	case len(c.SNRs) == 0:
		return fmt.Errorf("%w: at least one SNR is required", ErrInvalidConfig)
	}
	return nil
}
