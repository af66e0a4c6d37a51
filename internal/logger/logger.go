// Package logger builds the zerolog logger shared by the CLI and the TUI.
// The TUI owns the terminal, so logs go to a file unless File is "-".
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Config controls where and how much is logged.
type Config struct {
	Level   string // debug, info, warn, error; empty means info
	File    string // log file path; "-" writes human-readable lines to stderr; empty disables logging
	Version string
}

// New returns a logger and a close function for the underlying file.
func New(cfg Config) (zerolog.Logger, func() error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var out io.Writer
	closer := func() error { return nil }

	switch cfg.File {
	case "":
		return zerolog.Nop(), closer
	case "-":
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return zerolog.Nop(), closer
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), closer
		}
		out = f
		closer = f.Close
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp().Str("app", "fin-cli")
	if cfg.Version != "" {
		ctx = ctx.Str("version", cfg.Version)
	}
	return ctx.Logger(), closer
}
