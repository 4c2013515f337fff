// Package logging builds the diagnostic logger shared by ai29 components.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the logger
type Options struct {
	// Level is a zerolog level name ("debug", "info", "warn", "error", "disabled")
	Level string
	// File, when set, receives JSON log lines instead of the console writer.
	// Used while the TUI owns the terminal.
	File string
	// Writer overrides the destination (tests)
	Writer io.Writer
}

// ParseLevel parses a level name, defaulting to warn for unknown input
func ParseLevel(name string) zerolog.Level {
	if name == "" {
		return zerolog.WarnLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.WarnLevel
	}
	return lvl
}

// New creates a logger. The returned closer must be called to flush the log
// file; it is a no-op for console output.
func New(opts Options) (zerolog.Logger, func() error, error) {
	level := ParseLevel(opts.Level)
	noop := func() error { return nil }

	if opts.Writer != nil {
		return zerolog.New(opts.Writer).Level(level).With().Timestamp().Logger(), noop, nil
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("failed to open log file: %w", err)
		}
		logger := zerolog.New(f).Level(level).With().Timestamp().Logger()
		return logger, f.Close, nil
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(console).Level(level).With().Timestamp().Logger(), noop, nil
}

// Component returns a child logger tagged with a component name
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
