// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley/internal/ui/components"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// sidebarWidth is the fixed width of the conversation list pane.
const sidebarWidth = 28

// =============================================================================
// VIEW
// =============================================================================

// View renders the full chat interface.
func (m Model) View() string {
	if !m.ready {
		return "Starting parley..."
	}

	header := m.renderHeader()
	sidebar := components.Sidebar{
		Conversations: m.store.ConversationsByRecency(),
		ActiveID:      m.activeConversationID(),
		Width:         sidebarWidth,
		Height:        m.viewport.Height,
		Focused:       m.sidebarFocus,
	}.Render()

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, m.viewport.View())

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.composer.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

// renderHeader draws the top bar with the active conversation title.
func (m Model) renderHeader() string {
	title := "parley"
	if active := m.store.ActiveConversation(); active != nil {
		title += " - " + active.Title
	}
	if !m.client.IsConfigured() {
		title += "  [offline]"
	}
	return styles.Header.Width(m.width).Render(title)
}

// renderStatusBar draws key hints, transient status, and streaming state.
func (m Model) renderStatusBar() string {
	var parts []string

	switch {
	case m.fetching:
		parts = append(parts, "Waiting for reply... (Esc to cancel)")
	case m.pendingID != "":
		parts = append(parts, "Streaming... (Esc to cancel)")
	case m.status != "":
		parts = append(parts, m.status)
	default:
		hints := []string{"Enter send", "C-n new chat", "Tab chats", "C-e export"}
		if m.voiceOn && m.speech.InputAvailable() {
			hints = append(hints, "C-v voice")
		}
		hints = append(hints, "C-c quit")
		parts = append(parts, strings.Join(hints, " | "))
	}

	return styles.StatusBar.Width(m.width).Render(strings.Join(parts, "  "))
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshTranscript rebuilds the viewport content from store state and
// scrolls to the newest message.
func (m *Model) refreshTranscript() {
	if m.viewport.Width == 0 {
		return
	}

	id := m.activeConversationID()
	if id == "" {
		m.viewport.SetContent(styles.Hint.Render("Start typing to begin a new conversation."))
		return
	}

	msgs := m.store.MessagesForConversation(id)
	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		blocks = append(blocks, components.MessageView{
			Message:        msg,
			MaxWidth:       m.viewport.Width - 2,
			ShowTimestamp:  m.cfg.UI.ShowTimestamps,
			ShowTone:       m.toneOn,
			StreamingState: msg.ID == m.pendingID,
		}.Render())
	}

	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
	m.viewport.GotoBottom()
}

// activeConversationID returns the active conversation id, or "".
func (m Model) activeConversationID() string {
	if active := m.store.ActiveConversation(); active != nil {
		return active.ID
	}
	return ""
}
