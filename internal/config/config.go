package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     int    `env:"PORT"     envDefault:"8080"`
	Password string `env:"PASSWORD" envDefault:"binwatch"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"720h"` // login cookie lifetime

	ModelPath       string `env:"MODEL_PATH"        envDefault:"models/garbage_classifier.onnx"`
	ModelConfigPath string `env:"MODEL_CONFIG_PATH"`
	ModelInputSize  int    `env:"MODEL_INPUT_SIZE"  envDefault:"224"`

	UploadDirectory string `env:"UPLOAD_DIR"         envDefault:"static/uploads"`
	MaxUploadSizeMB int64  `env:"MAX_UPLOAD_SIZE_MB" envDefault:"200"`
	DatabasePath    string `env:"DATABASE_PATH"      envDefault:"data/binwatch.db"`

	LogDirectory string `env:"LOG_DIR"   envDefault:"logs"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`

	SampleCount       int  `env:"SAMPLE_COUNT"        envDefault:"30"`  // target frames sampled per video
	MaxSampleCount    int  `env:"MAX_SAMPLE_COUNT"    envDefault:"300"` // upper bound for per-request sample counts
	ClassifierWorkers int  `env:"CLASSIFIER_WORKERS"  envDefault:"1"`   // nets loaded; >1 classifies frames in parallel
	MaxConcurrentJobs int  `env:"MAX_CONCURRENT_JOBS" envDefault:"2"`
	StrictEmpty       bool `env:"STRICT_EMPTY"        envDefault:"false"` // report empty videos as errors instead of sentinel results

	TracingEndpoint string `env:"TRACING_ENDPOINT"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.SampleCount < 1:
		return fmt.Errorf("SAMPLE_COUNT must be at least 1, got %d", c.SampleCount)
	case c.MaxSampleCount < c.SampleCount:
		return fmt.Errorf("MAX_SAMPLE_COUNT (%d) must not be below SAMPLE_COUNT (%d)", c.MaxSampleCount, c.SampleCount)
	case c.ClassifierWorkers < 1:
		return fmt.Errorf("CLASSIFIER_WORKERS must be at least 1, got %d", c.ClassifierWorkers)
	case c.MaxConcurrentJobs < 1:
		return fmt.Errorf("MAX_CONCURRENT_JOBS must be at least 1, got %d", c.MaxConcurrentJobs)
	case c.ModelInputSize < 1:
		return fmt.Errorf("MODEL_INPUT_SIZE must be positive, got %d", c.ModelInputSize)
	case c.SessionTTL < 0:
		return fmt.Errorf("SESSION_TTL must not be negative, got %s", c.SessionTTL)
	case c.MaxUploadSizeMB < 1:
		return fmt.Errorf("MAX_UPLOAD_SIZE_MB must be positive, got %d", c.MaxUploadSizeMB)
	}
	return nil
}
