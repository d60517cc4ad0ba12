package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/RyanBlaney/sonido-enhance/config"
	"github.com/RyanBlaney/sonido-enhance/logging"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(2)
	}

	if level, ok := logging.ParseLevel(cfg.LogLevel); ok {
		logging.SetLevel(level)
	}

	summary, err := run(cfg, os.Stderr)
	if err != nil {
		logging.Fatal(err, "Dataset preparation failed")
	}

	logging.Info("Dataset ready", logging.Fields{
		"pairs":   summary.Pairs,
		"noisy":   summary.NoisyDir,
		"clean":   summary.CleanDir,
		"seconds": summary.Seconds,
	})
}

func loadConfig(args []string) (*config.PipelineConfig, error) {
	fs := flag.NewFlagSet("mixdataset", flag.ContinueOnError)
	configFile := fs.String("config", "", "JSON configuration file")
	envFile := fs.String("env", ".env", "dotenv file with SONIDO_* variables")
	cleanDir := fs.String("clean", "", "directory of clean speech WAV files")
	noiseDir := fs.String("noise", "", "directory of noise WAV files")
	outDir := fs.String("out", "", "output directory")
	snrs := fs.String("snrs", "", "comma separated SNRs in dB")
	limit := fs.Int("limit", -1, "maximum number of clean files (0 = all)")
	offset := fs.Int("offset", -1, "number of clean files to skip")
	seed := fs.Uint64("seed", 0, "random seed for noise offsets")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		return nil, err
	}

	cfg := config.DefaultPipelineConfig()
	if *configFile != "" {
		var err error
		if cfg, err = config.LoadFile(*configFile); err != nil {
			return nil, err
		}
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if *cleanDir != "" {
		cfg.CleanDir = *cleanDir
	}
	if *noiseDir != "" {
		cfg.NoiseDir = *noiseDir
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *snrs != "" {
		parsed, err := config.ParseSNRs(*snrs)
		if err != nil {
			return nil, fmt.Errorf("-snrs: %w", err)
		}
		cfg.SNRs = parsed
	}
	if *limit >= 0 {
		cfg.Limit = *limit
	}
	if *offset >= 0 {
		cfg.Offset = *offset
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	if cfg.CleanDir == "" || cfg.NoiseDir == "" {
		return nil, fmt.Errorf("both -clean and -noise are required")
	}
	return cfg, cfg.Validate()
}
