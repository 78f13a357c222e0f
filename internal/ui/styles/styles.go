// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// SHARED STYLES
// =============================================================================

// Header renders the top bar with the app name and active conversation.
var Header = lipgloss.NewStyle().
	Foreground(TextPrimary).
	Background(SurfaceDim).
	Bold(true).
	Padding(0, 1)

// StatusBar renders the bottom hint line.
var StatusBar = lipgloss.NewStyle().
	Foreground(TextMuted).
	Background(SurfaceDim).
	Padding(0, 1)

// Sidebar frames the conversation list pane.
var Sidebar = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(Overlay).
	Padding(0, 1)

// SidebarFocused is the sidebar frame while it has keyboard focus.
var SidebarFocused = Sidebar.BorderForeground(FocusRing)

// SidebarItem renders one conversation entry.
var SidebarItem = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Padding(0, 1)

// SidebarItemActive renders the selected conversation entry.
var SidebarItemActive = lipgloss.NewStyle().
	Foreground(TextPrimary).
	Background(SelectionBg).
	Bold(true).
	Padding(0, 1)

// UserBubble frames a user message.
var UserBubble = lipgloss.NewStyle().
	Foreground(UserBubbleFg).
	Background(UserBubbleBg).
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(UserBubbleBorder).
	Padding(0, 1)

// AssistantBubble frames an assistant message.
var AssistantBubble = lipgloss.NewStyle().
	Foreground(AssistantBubbleFg).
	Background(AssistantBubbleBg).
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(AssistantBubbleBorder).
	Padding(0, 1)

// RoleLabel renders the speaker name above a bubble.
var RoleLabel = lipgloss.NewStyle().
	Foreground(TextMuted).
	Bold(true)

// Timestamp renders a message timestamp.
var Timestamp = lipgloss.NewStyle().
	Foreground(TextMuted)

// Bold renders inline bold markdown spans.
var Bold = lipgloss.NewStyle().Bold(true)

// Italic renders inline italic markdown spans.
var Italic = lipgloss.NewStyle().Italic(true)

// InlineCode renders inline code spans.
var InlineCode = lipgloss.NewStyle().
	Background(SurfaceDim).
	Foreground(Cyan).
	Padding(0, 1)

// CodeBlock frames a fenced code block.
var CodeBlock = lipgloss.NewStyle().
	Background(SurfaceDim).
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(Overlay).
	Padding(0, 1)

// LangBadge labels a code block with its language.
var LangBadge = lipgloss.NewStyle().
	Foreground(TextMuted).
	Background(OverlayDim).
	Padding(0, 1).
	Bold(true)

// ErrorText renders error lines.
var ErrorText = lipgloss.NewStyle().
	Foreground(Rose).
	Bold(true)

// Hint renders dim helper text.
var Hint = lipgloss.NewStyle().
	Foreground(TextMuted).
	Italic(true)
