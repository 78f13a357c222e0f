// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/parley/internal/markdown"
	"github.com/jeranaias/parley/internal/model"
)

// =============================================================================
// MARKDOWN RENDERER TESTS
// =============================================================================

func TestRenderMarkdown_InlineContent(t *testing.T) {
	out := RenderMarkdown(markdown.Render("Hello **world**, use `foo()`"), 80)
	for _, want := range []string{"Hello", "world", "foo()"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderMarkdown_LineBreaks(t *testing.T) {
	out := RenderMarkdown(markdown.Render("one\ntwo"), 80)
	lines := strings.Split(out, "\n")
	if len(lines) < 2 {
		t.Fatalf("expected two lines, got %q", out)
	}
	if !strings.Contains(lines[0], "one") || !strings.Contains(lines[1], "two") {
		t.Errorf("line content wrong: %q", lines)
	}
}

func TestRenderMarkdown_CodeBlockKeepsContent(t *testing.T) {
	out := RenderMarkdown(markdown.Render("```go\nfmt.Println(42)\n```"), 80)
	if !strings.Contains(out, "42") {
		t.Errorf("code content missing:\n%s", out)
	}
	if !strings.Contains(out, "go") {
		t.Errorf("language badge missing:\n%s", out)
	}
}

func TestRenderMarkdown_Empty(t *testing.T) {
	// A single line break node renders as an empty string, not a panic.
	out := RenderMarkdown(markdown.Render(""), 80)
	if strings.TrimSpace(out) != "" {
		t.Errorf("empty input rendered %q", out)
	}
}

func TestHighlightCode_UnknownLanguageFallsBack(t *testing.T) {
	code := "totally plain text"
	out := highlightCode(code, "nosuchlang")
	if out == "" {
		t.Error("fallback produced empty output")
	}
}

// =============================================================================
// MESSAGE VIEW TESTS
// =============================================================================

func TestMessageView_UserVerbatim(t *testing.T) {
	msg := model.NewUserMessage("**not parsed** as markdown")
	out := MessageView{Message: msg, MaxWidth: 80}.Render()
	if !strings.Contains(out, "You") {
		t.Error("user label missing")
	}
	if !strings.Contains(out, "**not parsed**") {
		t.Errorf("user content must stay verbatim:\n%s", out)
	}
}

func TestMessageView_AssistantRendersMarkdown(t *testing.T) {
	msg := model.NewAssistantMessage()
	msg.Content = "plain **bold** end"
	out := MessageView{Message: msg, MaxWidth: 80}.Render()
	if !strings.Contains(out, "Assistant") {
		t.Error("assistant label missing")
	}
	if strings.Contains(out, "**") {
		t.Errorf("markers should be consumed by the renderer:\n%s", out)
	}
}

func TestMessageView_ToneShownWhenEnabled(t *testing.T) {
	msg := model.NewUserMessage("this is broken")
	msg.Tone = "negative"

	withTone := MessageView{Message: msg, MaxWidth: 80, ShowTone: true}.Render()
	if !strings.Contains(withTone, "negative") {
		t.Error("tone label missing when enabled")
	}

	withoutTone := MessageView{Message: msg, MaxWidth: 80}.Render()
	if strings.Contains(withoutTone, "negative") {
		t.Error("tone label shown when disabled")
	}
}

func TestMessageView_NilMessage(t *testing.T) {
	if out := (MessageView{MaxWidth: 80}).Render(); out != "" {
		t.Errorf("nil message rendered %q", out)
	}
}

// =============================================================================
// SIDEBAR TESTS
// =============================================================================

func TestSidebar_HighlightsActive(t *testing.T) {
	a := model.NewConversation()
	a.Title = "First chat"
	b := model.NewConversation()
	b.Title = "Second chat"

	out := Sidebar{
		Conversations: []*model.Conversation{a, b},
		ActiveID:      b.ID,
		Width:         30,
		Height:        10,
	}.Render()

	if !strings.Contains(out, "First chat") || !strings.Contains(out, "Second chat") {
		t.Errorf("titles missing:\n%s", out)
	}
}

func TestSidebar_EmptyState(t *testing.T) {
	out := Sidebar{Width: 30, Height: 10}.Render()
	if !strings.Contains(out, "No chats yet") {
		t.Errorf("empty state missing:\n%s", out)
	}
}
