// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the parley application.
package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// UNICODE: Rune-aware truncation preserves multi-byte characters.
// These functions count characters, not bytes, so UTF-8 strings are never
// cut mid-character.

// TruncateRunes truncates a string to a maximum number of runes.
// If the string is truncated, "..." is appended.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// TruncateRunesNoEllipsis truncates a string to a maximum number of runes
// without appending an ellipsis.
func TruncateRunesNoEllipsis(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

// TruncateWidth truncates a string to a maximum display width, accounting
// for double-width (CJK) characters. Appends "..." when truncated and the
// budget allows it.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth > 3 {
		return runewidth.Truncate(s, maxWidth-3, "") + "..."
	}
	return runewidth.Truncate(s, maxWidth, "")
}

// StringWidth returns the display width of a string in terminal columns.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// RuneLen returns the number of runes (characters) in a string.
// This is safer than len() for UTF-8 strings.
func RuneLen(s string) int {
	return len([]rune(s))
}

// CollapseNewlines replaces newlines with single spaces, for one-line
// previews of multi-line content.
func CollapseNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", " ")
}
