// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley/internal/api"
	"github.com/jeranaias/parley/internal/speech"
)

// =============================================================================
// MESSAGES
// =============================================================================

// replyMsg carries the endpoint's reply (or failure) for a pending
// assistant message.
type replyMsg struct {
	messageID string
	content   string
	err       error
}

// streamTickMsg drives buffered flushes of streamed chunks into the store.
type streamTickMsg struct {
	Time time.Time
}

// transcriptMsg carries the result of a voice input capture.
type transcriptMsg struct {
	text string
	err  error
}

// exportedMsg reports the outcome of a conversation export.
type exportedMsg struct {
	path string
	err  error
}

// =============================================================================
// COMMANDS
// =============================================================================

// streamFPS caps transcript redraws during streaming.
const streamFPS = 30

// fetchReplyCmd requests a completion for the transcript. The reply is
// routed back to the pending assistant message by id, so a reply arriving
// after the user moved on is discarded rather than misapplied.
func fetchReplyCmd(ctx context.Context, client *api.Client, messageID string, msgs []api.Message) tea.Cmd {
	return func() tea.Msg {
		reply, err := client.Complete(ctx, msgs)
		if err != nil {
			return replyMsg{messageID: messageID, err: err}
		}
		return replyMsg{messageID: messageID, content: reply.Content}
	}
}

// streamTickCmd schedules the next buffered flush.
func streamTickCmd() tea.Cmd {
	return tea.Tick(time.Second/streamFPS, func(t time.Time) tea.Msg {
		return streamTickMsg{Time: t}
	})
}

// listenCmd captures one voice utterance.
func listenCmd(ctl *speech.Controller) tea.Cmd {
	return func() tea.Msg {
		text, err := ctl.Listen(context.Background())
		return transcriptMsg{text: text, err: err}
	}
}

// announceCmd speaks a completed reply in the background. Failures are
// handled inside the controller; nothing comes back to the UI.
func announceCmd(ctl *speech.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		ctl.Announce(context.Background(), text)
		return nil
	}
}
