package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPipelineConfigIsValid(t *testing.T) {
	cfg := DefaultPipelineConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.SampleRate != 16000 || cfg.NFFT != 512 || cfg.HopLength != 256 || cfg.NFrames != 128 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	body := `{"clean_dir": "/data/clean", "snrs": [0, 10], "limit": 20}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.CleanDir != "/data/clean" || cfg.Limit != 20 || len(cfg.SNRs) != 2 || cfg.SNRs[1] != 10 {
		t.Fatalf("loaded %+v", cfg)
	}
	if cfg.SampleRate != 16000 {
		t.Fatalf("defaults not kept: sample_rate = %d", cfg.SampleRate)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(bad); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyLookup(t *testing.T) {
	env := map[string]string{
		"SONIDO_SAMPLE_RATE": "8000",
		"SONIDO_SNRS":        "-5, 0,5",
		"SONIDO_CLEAN_DIR":   "/clean",
		"SONIDO_SEED":        "42",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultPipelineConfig()
	if err := applyLookup(cfg, lookup); err != nil {
		t.Fatalf("applyLookup() error = %v", err)
	}
	if cfg.SampleRate != 8000 || cfg.CleanDir != "/clean" || cfg.Seed != 42 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.SNRs) != 3 || cfg.SNRs[0] != -5 || cfg.SNRs[2] != 5 {
		t.Fatalf("snrs = %v", cfg.SNRs)
	}
	if cfg.HopLength != 256 {
		t.Fatalf("unset variable changed hop_length to %d", cfg.HopLength)
	}

	env["SONIDO_LIMIT"] = "lots"
	if err := applyLookup(cfg, lookup); err == nil {
		t.Fatal("expected error for non-numeric limit")
	}
}

func TestApplyEnvWithDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SONIDO_N_FRAMES=64\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SONIDO_N_FRAMES", "")
	os.Unsetenv("SONIDO_N_FRAMES")

	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	cfg := DefaultPipelineConfig()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.NFrames != 64 {
		t.Fatalf("n_frames = %d, want 64 from .env", cfg.NFrames)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PipelineConfig)
	}{
		{"sample rate", func(c *PipelineConfig) { c.SampleRate = 0 }},
		{"odd fft", func(c *PipelineConfig) { c.NFFT = 511 }},
		{"other fft size", func(c *PipelineConfig) { c.NFFT = 1024 }},
		{"hop", func(c *PipelineConfig) { c.HopLength = -1 }},
		{"other hop", func(c *PipelineConfig) { c.HopLength = 128 }},
		{"offset", func(c *PipelineConfig) { c.Offset = -2 }},
		{"frames", func(c *PipelineConfig) { c.NFrames = 0 }},
		{"snrs", func(c *PipelineConfig) { c.SNRs = nil }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultPipelineConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestParseSNRs(t *testing.T) {
	got, err := ParseSNRs("0, 2.5,,-3")
	if err != nil {
		t.Fatalf("ParseSNRs() error = %v", err)
	}
	if len(got) != 3 || got[1] != 2.5 || got[2] != -3 {
		t.Fatalf("got %v", got)
	}
	if _, err := ParseSNRs("a,b"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyLookupRejectsUnsupportedFFTSize(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == EnvPrefix+"N_FFT" {
			return "1024", true
		}
		return "", false
	}
	cfg := DefaultPipelineConfig()
	if err := applyLookup(cfg, lookup); err != nil {
		t.Fatalf("applyLookup() error = %v", err)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Validate() err = %v, want ErrInvalidConfig for n_fft 1024", err)
	}
}
