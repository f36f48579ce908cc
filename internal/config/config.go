// Package config loads server settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds settings for the HTTP server and the default pipeline
// options it applies to requests that do not override them.
type Config struct {
	Port   string `envconfig:"PORT" default:"8090"`
	APIKey string `envconfig:"MDCHUNK_API_KEY"`
	Debug  bool   `envconfig:"DEBUG" default:"false"`

	// Upload limits
	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"52428800"`

	// Chunking defaults
	TargetChunkSize int `envconfig:"TARGET_CHUNK_SIZE" default:"2000"`
	MaxChunkSize    int `envconfig:"MAX_CHUNK_SIZE" default:"4000"`
	MinChunkSize    int `envconfig:"MIN_CHUNK_SIZE" default:"200"`

	// Batch processing
	Workers int `envconfig:"WORKERS" default:"4"`
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first when present.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustLoad is Load for main functions: it logs and exits on error.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

func (c Config) Validate() error {
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.TargetChunkSize <= 0 || c.MaxChunkSize <= 0 {
		return fmt.Errorf("chunk sizes must be positive")
	}
	if c.TargetChunkSize > c.MaxChunkSize {
		return fmt.Errorf("TARGET_CHUNK_SIZE %d exceeds MAX_CHUNK_SIZE %d", c.TargetChunkSize, c.MaxChunkSize)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("WORKERS must be positive, got %d", c.Workers)
	}
	return nil
}

// LogLevel maps the debug flag to a slog level.
func (c Config) LogLevel() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
