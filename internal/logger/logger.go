// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logger provides structured file logging for parley.
//
// A TUI owns the terminal, so logs never go to stdout or stderr while the
// interface is running; everything is written to ~/.parley/parley.log as
// JSON lines.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// =============================================================================
// LOGGER
// =============================================================================

// Logger wraps zerolog with parley-specific setup.
type Logger struct {
	zlog   zerolog.Logger
	closer io.Closer
}

// Config holds logger configuration.
type Config struct {
	// Level is "debug", "info", "warn", or "error".
	Level string
	// Path is the log file location. Empty means discard.
	Path string
	// Output overrides the file destination, mainly for tests.
	Output io.Writer
}

// New creates a structured logger per the config.
func New(cfg Config) (*Logger, error) {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	var out io.Writer
	var closer io.Closer
	switch {
	case cfg.Output != nil:
		out = cfg.Output
	case cfg.Path != "":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = file
		closer = file
	default:
		out = io.Discard
	}

	zlog := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "parley").
		Logger()

	return &Logger{zlog: zlog, closer: closer}, nil
}

// Close flushes and closes the underlying log file.
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// Debug starts a debug-level event.
func (l *Logger) Debug() *zerolog.Event { return l.zlog.Debug() }

// Info starts an info-level event.
func (l *Logger) Info() *zerolog.Event { return l.zlog.Info() }

// Warn starts a warn-level event.
func (l *Logger) Warn() *zerolog.Event { return l.zlog.Warn() }

// Error starts an error-level event.
func (l *Logger) Error() *zerolog.Event { return l.zlog.Error() }

// Component returns a child logger tagged with a component name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{
		zlog:   l.zlog.With().Str("component", name).Logger(),
		closer: nil,
	}
}

// =============================================================================
// GLOBAL INSTANCE
// =============================================================================

var (
	global   *Logger
	globalMu sync.RWMutex
)

// Init installs the global logger instance.
func Init(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	if global != nil {
		global.Close()
	}
	global = l
	return nil
}

// Global returns the global logger, a no-op logger when Init was never
// called.
func Global() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if global == nil {
		return &Logger{zlog: zerolog.New(io.Discard)}
	}
	return global
}
