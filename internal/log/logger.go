// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// EnvLevel is consulted when Config.Level is empty.
const EnvLevel = "FIELDPULSE_LOG_LEVEL"

// Config describes the process-wide logger.
type Config struct {
	Level   string
	Format  string    // "json" (default) or "console"
	Output  io.Writer // default os.Stdout
	Service string    // default "fieldpulse"
	Version string
}

// base holds the process logger. Components derive children from it on
// every WithComponent call, so Reset affects loggers created afterwards.
var base atomic.Pointer[zerolog.Logger]

// Reset installs a new process logger and global level. The CLI calls it
// once flags and config are resolved; tests call it to capture output.
func Reset(cfg Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(resolveLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
	}
	service := cfg.Service
	if service == "" {
		service = "fieldpulse"
	}

	b := zerolog.New(out).With().Timestamp().Str("service", service)
	if cfg.Version != "" {
		b = b.Str("version", cfg.Version)
	}
	l := b.Logger()
	base.Store(&l)
}

func resolveLevel(level string) zerolog.Level {
	if level == "" {
		level = os.Getenv(EnvLevel)
	}
	if parsed, err := zerolog.ParseLevel(level); err == nil && level != "" {
		return parsed
	}
	return zerolog.InfoLevel
}

// SetLevel changes verbosity without rebuilding the logger. Config reload
// uses it; other logging settings need a restart.
func SetLevel(level string) error {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(parsed)
	return nil
}

// Base returns the process logger, installing defaults on first use.
func Base() zerolog.Logger {
	if l := base.Load(); l != nil {
		return *l
	}
	Reset(Config{})
	return *base.Load()
}

// WithComponent returns a child logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str(FieldComponent, component).Logger()
}
