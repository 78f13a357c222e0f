// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides a plain readline-style chat loop for terminals where
// the full-screen interface is unavailable or unwanted.
package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/parley/internal/config"
)

// =============================================================================
// LINE INPUT
// =============================================================================

// LineReader wraps liner with persistent input history.
type LineReader struct {
	line        *liner.State
	historyFile string
}

// NewLineReader creates a reader with history loaded from the config
// directory. History lives next to config.toml so a wiped config directory
// also clears it.
func NewLineReader() *LineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}

	r := &LineReader{
		line:        line,
		historyFile: filepath.Join(dir, "input_history"),
	}
	r.loadHistory()
	return r
}

func (r *LineReader) loadHistory() {
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line with the given prompt. Non-empty lines are added
// to the navigation history.
func (r *LineReader) ReadInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// saveHistory persists input history with owner-only permissions.
func (r *LineReader) saveHistory() {
	if err := config.EnsureDir(); err != nil {
		return
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	r.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (r *LineReader) Close() {
	r.saveHistory()
	r.line.Close()
}
