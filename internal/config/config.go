package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	pkgconfig "github.com/utafrali/productreview/pkg/config"
	"github.com/utafrali/productreview/pkg/logger"
	"github.com/utafrali/productreview/pkg/tracing"
)

// Config holds all configuration for the product review client.
type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Remote catalog
	CatalogURL        string        `env:"PRODUCTREVIEW_CATALOG_URL" envDefault:"http://localhost:8080/"`
	HTTPTimeout       time.Duration `env:"PRODUCTREVIEW_HTTP_TIMEOUT" envDefault:"15s"`
	HTTPMaxRetries    int           `env:"PRODUCTREVIEW_HTTP_MAX_RETRIES" envDefault:"0"`
	BreakerEnabled    bool          `env:"PRODUCTREVIEW_BREAKER_ENABLED" envDefault:"true"`
	BreakerTimeout    time.Duration `env:"PRODUCTREVIEW_BREAKER_TIMEOUT" envDefault:"30s"`
	BreakerMinRequest uint32        `env:"PRODUCTREVIEW_BREAKER_MIN_REQUESTS" envDefault:"5"`
	BreakerRatio      float64       `env:"PRODUCTREVIEW_BREAKER_FAILURE_RATIO" envDefault:"0.5"`

	// Local state
	DataDir string `env:"PRODUCTREVIEW_DATA_DIR"`

	// Assistant
	AssistantLatency time.Duration `env:"PRODUCTREVIEW_ASSISTANT_LATENCY" envDefault:"1500ms"`

	// Catalog stub
	StubAddr string `env:"PRODUCTREVIEW_STUB_ADDR" envDefault:":8080"`

	// OpenTelemetry
	Tracing tracing.Config
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return load()
}

// LoadFrom reads configuration from vars instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return load(pkgconfig.WithEnvironment(vars))
}

func load(opts ...pkgconfig.Option) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, opts...); err != nil {
		return nil, fmt.Errorf("load productreview config: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. Load calls it; callers that override fields
// afterwards (e.g. from flags) should call it again.
func (c *Config) Validate() error {
	u, err := url.Parse(c.CatalogURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("PRODUCTREVIEW_CATALOG_URL must be an absolute http(s) URL, got %q", c.CatalogURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("PRODUCTREVIEW_HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	if c.HTTPMaxRetries < 0 || c.HTTPMaxRetries > 10 {
		return fmt.Errorf("PRODUCTREVIEW_HTTP_MAX_RETRIES must be between 0 and 10, got %d", c.HTTPMaxRetries)
	}
	if c.BreakerRatio <= 0 || c.BreakerRatio > 1.0 {
		return fmt.Errorf("PRODUCTREVIEW_BREAKER_FAILURE_RATIO must be in (0, 1], got %f", c.BreakerRatio)
	}
	if c.AssistantLatency < 0 {
		return fmt.Errorf("PRODUCTREVIEW_ASSISTANT_LATENCY must not be negative, got %s", c.AssistantLatency)
	}
	switch strings.ToLower(c.LogFormat) {
	case logger.FormatJSON, logger.FormatText:
	default:
		return fmt.Errorf("LOG_FORMAT must be %q or %q, got %q", logger.FormatJSON, logger.FormatText, c.LogFormat)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.Tracing.SampleRate)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("PRODUCTREVIEW_DATA_DIR is required")
	}
	return nil
}

// CatalogBaseURL returns CatalogURL with a guaranteed trailing slash so that
// relative API paths resolve beneath it.
func (c *Config) CatalogBaseURL() string {
	if strings.HasSuffix(c.CatalogURL, "/") {
		return c.CatalogURL
	}
	return c.CatalogURL + "/"
}

// WishlistPath returns the SQLite database file for the wishlist.
func (c *Config) WishlistPath() string {
	return filepath.Join(c.DataDir, "wishlist.db")
}

// PreferencesPath returns the YAML preferences file.
func (c *Config) PreferencesPath() string {
	return filepath.Join(c.DataDir, "preferences.yaml")
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "productreview")
	}
	return ".productreview"
}
