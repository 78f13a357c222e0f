// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{"shorter than max", "hello", 10, "hello"},
		{"exactly max", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 8, "hello..."},
		{"zero max", "hello", 0, ""},
		{"tiny max keeps no ellipsis", "hello", 2, "he"},
		{"unicode not split", "héllo wörld", 8, "héllo..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := TruncateRunes(tc.input, tc.maxRunes)
			if got != tc.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.input, tc.maxRunes, got, tc.want)
			}
		})
	}
}

func TestTruncateRunesNoEllipsis(t *testing.T) {
	if got := TruncateRunesNoEllipsis("hello world", 5); got != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
	if got := TruncateRunesNoEllipsis("héllo", 2); got != "hé" {
		t.Errorf("got %q, want %q", got, "hé")
	}
	if got := TruncateRunesNoEllipsis("hi", 10); got != "hi" {
		t.Errorf("got %q, want %q", got, "hi")
	}
}

func TestStringWidth_CJK(t *testing.T) {
	// CJK characters occupy two terminal columns.
	if got := StringWidth("日本"); got != 4 {
		t.Errorf("StringWidth(日本) = %d, want 4", got)
	}
	if got := StringWidth("abc"); got != 3 {
		t.Errorf("StringWidth(abc) = %d, want 3", got)
	}
}

func TestCollapseNewlines(t *testing.T) {
	got := CollapseNewlines("a\r\nb\nc")
	if got != "a b c" {
		t.Errorf("CollapseNewlines = %q, want %q", got, "a b c")
	}
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "out.json")

	if err := AtomicWriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q, want %q", data, "hello")
	}

	// Overwrite must replace, not append.
	if err := AtomicWriteFile(path, []byte("second"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile overwrite: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "second" {
		t.Errorf("content after overwrite = %q, want %q", data, "second")
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}
