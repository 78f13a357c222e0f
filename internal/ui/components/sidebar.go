// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/ui/styles"
	"github.com/jeranaias/parley/internal/util"
)

// =============================================================================
// CONVERSATION SIDEBAR
// =============================================================================

// Sidebar renders the conversation list pane.
type Sidebar struct {
	Conversations []*model.Conversation
	ActiveID      string
	Width         int
	Height        int
	Focused       bool
}

// Render draws the sidebar with the active conversation highlighted.
func (s Sidebar) Render() string {
	innerWidth := s.Width - 4
	if innerWidth < 8 {
		innerWidth = 8
	}

	var lines []string
	lines = append(lines, styles.RoleLabel.Render("Conversations"))
	lines = append(lines, "")

	if len(s.Conversations) == 0 {
		lines = append(lines, styles.Hint.Render("No chats yet"))
	}

	visible := s.Height - 4
	if visible < 1 {
		visible = 1
	}
	for i, conv := range s.Conversations {
		if i >= visible {
			lines = append(lines, styles.Hint.Render("..."))
			break
		}
		title := util.TruncateWidth(conv.Title, innerWidth)
		if conv.ID == s.ActiveID {
			lines = append(lines, styles.SidebarItemActive.Render(title))
		} else {
			lines = append(lines, styles.SidebarItem.Render(title))
		}
	}

	frame := styles.Sidebar
	if s.Focused {
		frame = styles.SidebarFocused
	}
	return frame.Width(s.Width - 2).Height(s.Height).Render(strings.Join(lines, "\n"))
}
