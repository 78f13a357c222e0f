// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley/internal/markdown"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE
// =============================================================================

// MessageView renders one transcript message.
type MessageView struct {
	Message        *model.Message
	MaxWidth       int
	ShowTimestamp  bool
	ShowTone       bool
	StreamingState bool
}

// Render draws the message as a labeled bubble. User messages render their
// content verbatim; assistant messages go through the markdown renderer.
func (v MessageView) Render() string {
	if v.Message == nil {
		return ""
	}

	width := v.MaxWidth
	if width < 24 {
		width = 24
	}

	label := "You"
	bubble := styles.UserBubble
	content := v.Message.Content
	if v.Message.Role == model.RoleAssistant {
		label = "Assistant"
		bubble = styles.AssistantBubble
		content = RenderMarkdown(markdown.Render(v.Message.Content), width-4)
	}

	var header strings.Builder
	header.WriteString(styles.RoleLabel.Render(label))
	if v.ShowTimestamp && !v.Message.CreatedAt.IsZero() {
		header.WriteString(" ")
		header.WriteString(styles.Timestamp.Render(v.Message.CreatedAt.Format("15:04")))
	}
	if v.ShowTone && v.Message.Tone != "" && v.Message.Tone != "neutral" {
		toneStyle := lipgloss.NewStyle().Foreground(styles.ToneColor(v.Message.Tone))
		header.WriteString(" ")
		header.WriteString(toneStyle.Render("(" + v.Message.Tone + ")"))
	}
	if v.StreamingState {
		header.WriteString(" ")
		header.WriteString(styles.Hint.Render("typing..."))
	}

	body := bubble.MaxWidth(width).Render(content)
	return header.String() + "\n" + body
}
