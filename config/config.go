// Package config loads evaluation settings from YAML. Unset fields take the
// values from their default tags, and the result is validated before use.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/sartorproj/goeval/align"
	"github.com/sartorproj/goeval/compare"
	"github.com/sartorproj/goeval/diagnostics"
	"github.com/sartorproj/goeval/internal/logger"
	"github.com/sartorproj/goeval/metrics"
	"github.com/sartorproj/goeval/rank"
)

// ErrInvalidConfig is returned when a configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New()

// Config holds the settings shared by every evaluation command.
type Config struct {
	Metric       string `yaml:"metric" default:"smape" validate:"oneof=smape abs_bias mae rmse mape"`
	ResidualKey  string `yaml:"residual_key" default:"normality" validate:"oneof=abs_bias normality autocorrelation"`
	Descending   *bool  `yaml:"descending"`
	TopK         int    `yaml:"top_k" default:"10" validate:"gte=0"`
	MinSamples   int    `yaml:"min_samples" default:"8" validate:"gte=3"`
	LjungBoxLags int    `yaml:"ljung_box_lags" default:"10" validate:"gte=1"`
	Aggregation  string `yaml:"aggregation" default:"pooled" validate:"oneof=pooled per_split"`
	Workers      int    `yaml:"workers" default:"0" validate:"gte=0"`
	Log          Log    `yaml:"log"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(err)
	}
	return &c
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML, fills defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("%w: %s fails %q (got %v)", ErrInvalidConfig, e.Namespace(), e.Tag(), e.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// SortDescending resolves the ranking direction for kind, honouring an
// explicit override.
func (c *Config) SortDescending(kind metrics.Kind) bool {
	if c.Descending != nil {
		return *c.Descending
	}
	return rank.Default(kind)
}

// Logger builds the process logger from the log section, writing to w.
func (c *Config) Logger(w io.Writer) (zerolog.Logger, error) {
	return logger.New(logger.Config{Level: c.Log.Level, Format: c.Log.Format, Writer: w})
}

// AlignOptions returns alignment options.
func (c *Config) AlignOptions(log zerolog.Logger) *align.Options {
	return &align.Options{Workers: c.Workers, Logger: log}
}

// MetricOptions returns metric computation options.
func (c *Config) MetricOptions(log zerolog.Logger) *metrics.Options {
	return &metrics.Options{
		Aggregation: metrics.Aggregation(c.Aggregation),
		Workers:     c.Workers,
		Logger:      log,
	}
}

// DiagnosticOptions returns residual diagnostic options.
func (c *Config) DiagnosticOptions(log zerolog.Logger) *diagnostics.Options {
	return &diagnostics.Options{
		MinSamples:   c.MinSamples,
		LjungBoxLags: c.LjungBoxLags,
		Aggregation:  metrics.Aggregation(c.Aggregation),
		Workers:      c.Workers,
		Logger:       log,
	}
}

// CompareOptions returns options for forecast value add and comet coordinates.
func (c *Config) CompareOptions(log zerolog.Logger) *compare.Options {
	return &compare.Options{
		Metric:      metrics.Kind(c.Metric),
		Aggregation: metrics.Aggregation(c.Aggregation),
		Workers:     c.Workers,
		Logger:      log,
	}
}
