package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CUPSTATS_"

// Load builds a Config by layering defaults, optional files, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env file in the working directory (or CUPSTATS_ENV_FILE), if present
//  3. file (YAML) if CUPSTATS_CONFIG is set
//  4. env (prefix CUPSTATS_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	// godotenv never overrides variables already present in the environment.
	envFile := os.Getenv(envPrefix + "ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: env file %s: %w", ErrLoadConfig, envFile, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// CUPSTATS_DATA_DIR -> data_dir (flat keys, underscores preserved).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants the rest of the process relies on.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.Source != SourceCSV && c.Source != SourcePostgres:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidConfig, c.Source)
	case c.Source == SourcePostgres && c.PostgresDSN == "":
		return fmt.Errorf("%w: postgres_dsn is required for the postgres source", ErrInvalidConfig)
	case c.MinPredictionYear > c.MaxPredictionYear:
		return fmt.Errorf("%w: min_prediction_year %d exceeds max_prediction_year %d",
			ErrInvalidConfig, c.MinPredictionYear, c.MaxPredictionYear)
	case c.DefaultPredictionYear < c.MinPredictionYear || c.DefaultPredictionYear > c.MaxPredictionYear:
		return fmt.Errorf("%w: default_prediction_year %d outside [%d, %d]",
			ErrInvalidConfig, c.DefaultPredictionYear, c.MinPredictionYear, c.MaxPredictionYear)
	}
	return nil
}
