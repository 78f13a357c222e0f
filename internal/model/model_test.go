// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

// =============================================================================
// TITLE DERIVATION TESTS
// =============================================================================

func TestTitleFromMessage(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "short message unmodified",
			input: "Hello there",
			want:  "Hello there",
		},
		{
			name:  "exactly forty runes unmodified",
			input: strings.Repeat("a", 40),
			want:  strings.Repeat("a", 40),
		},
		{
			name:  "forty-five runes truncated to forty plus marker",
			input: strings.Repeat("a", 45),
			want:  strings.Repeat("a", 40) + "...",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TitleFromMessage(tc.input); got != tc.want {
				t.Errorf("TitleFromMessage(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestTitleFromMessage_Unicode(t *testing.T) {
	// 45 multi-byte runes must truncate on rune boundaries.
	input := strings.Repeat("é", 45)
	got := TitleFromMessage(input)
	want := strings.Repeat("é", 40) + "..."
	if got != want {
		t.Errorf("TitleFromMessage unicode = %q, want %q", got, want)
	}
}

// =============================================================================
// CONSTRUCTOR TESTS
// =============================================================================

func TestNewConversation(t *testing.T) {
	conv := NewConversation()

	if conv.ID == "" || !strings.HasPrefix(conv.ID, "conv_") {
		t.Errorf("conversation ID = %q, want conv_ prefix", conv.ID)
	}
	if conv.Title != DefaultTitle {
		t.Errorf("title = %q, want sentinel %q", conv.Title, DefaultTitle)
	}
	if !conv.HasDefaultTitle() {
		t.Error("fresh conversation should report default title")
	}
	if conv.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if !conv.IsEmpty() {
		t.Error("fresh conversation should be empty")
	}
}

func TestNewMessage(t *testing.T) {
	msg := NewUserMessage("hi")
	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("message ID = %q, want msg_ prefix", msg.ID)
	}
	if msg.Role != RoleUser {
		t.Errorf("role = %q, want user", msg.Role)
	}
	if msg.Content != "hi" {
		t.Errorf("content = %q, want hi", msg.Content)
	}

	asst := NewAssistantMessage()
	if asst.Role != RoleAssistant {
		t.Errorf("role = %q, want assistant", asst.Role)
	}
	if !asst.IsEmpty() {
		t.Error("assistant placeholder should start empty")
	}
}

func TestMessageIDsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewMessageID()
		if seen[id] {
			t.Fatalf("duplicate message ID %q", id)
		}
		seen[id] = true
	}
}

func TestConversationClone(t *testing.T) {
	conv := NewConversation()
	conv.MessageIDs = append(conv.MessageIDs, "msg_a")

	clone := conv.Clone()
	clone.MessageIDs = append(clone.MessageIDs, "msg_b")

	if len(conv.MessageIDs) != 1 {
		t.Errorf("clone mutation leaked into original: %v", conv.MessageIDs)
	}
}

func TestMessagePreview(t *testing.T) {
	msg := NewUserMessage("line one\nline two that is fairly long indeed")
	preview := msg.Preview(20)
	if strings.Contains(preview, "\n") {
		t.Errorf("preview contains newline: %q", preview)
	}
	if !strings.HasSuffix(preview, "...") {
		t.Errorf("long preview should be truncated: %q", preview)
	}
}

func TestRoleDisplayName(t *testing.T) {
	if RoleUser.DisplayName() != "You" {
		t.Errorf("user display name = %q", RoleUser.DisplayName())
	}
	if RoleAssistant.DisplayName() != "Assistant" {
		t.Errorf("assistant display name = %q", RoleAssistant.DisplayName())
	}
}
