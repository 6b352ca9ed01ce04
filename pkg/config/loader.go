package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Option adjusts how Load reads the environment.
type Option func(*env.Options)

// WithEnvironment reads variables from vars instead of the process
// environment.
func WithEnvironment(vars map[string]string) Option {
	return func(o *env.Options) { o.Environment = vars }
}

// Load parses environment variables into the provided struct.
// The struct should use `env` tags to define mappings.
//
// Example:
//
//	type Config struct {
//	    CatalogURL string `env:"CATALOG_URL" envDefault:"http://localhost:8080/"`
//	    LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
//	}
func Load(cfg any, opts ...Option) error {
	var options env.Options
	for _, opt := range opts {
		opt(&options)
	}
	if err := env.ParseWithOptions(cfg, options); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
