// Package logger builds the structured loggers shared by every engine component.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New creates a timestamped zerolog logger writing to w at the given level.
// Unknown or empty levels fall back to info. A nil writer logs to stdout.
//
// Parameters:
//   - w: destination writer
//   - level: zerolog level name (trace, debug, info, warn, error, disabled)
//
// Returns:
//   - zerolog.Logger: the configured base logger
func New(w io.Writer, level string) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Console creates a human readable logger for interactive runs.
func Console(level string) zerolog.Logger {
	return New(zerolog.ConsoleWriter{Out: os.Stderr}, level)
}

// Component derives a child logger tagged with the component name.
func Component(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}
