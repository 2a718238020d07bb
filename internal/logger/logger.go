// Package logger builds the zerolog logger used by the CLI and handed to the
// evaluation packages.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level      string    // debug, info, warn, error
	Format     string    // json or console
	Writer     io.Writer // Destination (default: stderr)
	TimeFormat string
}

// New creates a logger from cfg. Empty fields fall back to info level,
// console format and stderr.
func New(cfg Config) (zerolog.Logger, error) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	return NewWithWriter(w, cfg.Format, cfg.TimeFormat).Level(level), nil
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, format, timeFormat string) zerolog.Logger {
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}
	if format != "json" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: timeFormat,
		}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}
