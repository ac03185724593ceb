package utils

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the network sizes and run options shared by the commands.
// Defaults match the reference sizes; every field can be overridden from the
// environment and then by flags.
type Config struct {
	NoiseSize   int    `env:"TRAJGAN_NOISE_SIZE" envDefault:"32"`
	HiddenSize  int    `env:"TRAJGAN_HIDDEN_SIZE" envDefault:"64"`
	MaxTrajLen  int    `env:"TRAJGAN_MAX_TRAJ_LEN" envDefault:"128"`
	ArrayLength int    `env:"TRAJGAN_ARRAY_LENGTH" envDefault:"128"`
	LogN        int    `env:"TRAJGAN_LOGN" envDefault:"13"`
	Addr        string `env:"TRAJGAN_ADDR" envDefault:"127.0.0.1:9123"`
	OutputDir   string `env:"TRAJGAN_OUTPUT_DIR"`
	Samples     int    `env:"TRAJGAN_SAMPLES" envDefault:"1"`
	Verbose     bool   `env:"TRAJGAN_VERBOSE" envDefault:"true"`
}

// DefaultConfig returns the defaults without reading the environment.
func DefaultConfig() Config {
	return Config{
		NoiseSize:   32,
		HiddenSize:  64,
		MaxTrajLen:  128,
		ArrayLength: 128,
		LogN:        13,
		Addr:        "127.0.0.1:9123",
		Samples:     1,
		Verbose:     true,
	}
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadConfig returns the defaults overridden by the environment.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateConfig checks the sizes the network factories need. The factories
// check again; this gives a command-level message before any work starts.
func ValidateConfig(config *Config) error {
	if config.NoiseSize <= 0 || config.HiddenSize <= 0 {
		return fmt.Errorf("noise and hidden sizes must be positive")
	}
	if config.MaxTrajLen <= 0 || config.MaxTrajLen%4 != 0 {
		return fmt.Errorf("max trajectory length must be a positive multiple of 4, got %d", config.MaxTrajLen)
	}
	if config.ArrayLength <= 0 || config.ArrayLength%8 != 0 {
		return fmt.Errorf("array length must be a positive multiple of 8, got %d", config.ArrayLength)
	}
	if config.ArrayLength != config.MaxTrajLen {
		return fmt.Errorf("array length %d must equal max trajectory length %d so generated trajectories can be scored",
			config.ArrayLength, config.MaxTrajLen)
	}
	if config.LogN < 10 || config.LogN > 16 {
		return fmt.Errorf("logN must be in [10, 16], got %d", config.LogN)
	}
	if config.Samples < 0 {
		return fmt.Errorf("samples must be non-negative")
	}
	return nil
}
