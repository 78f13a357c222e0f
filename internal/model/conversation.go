// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/jeranaias/parley/internal/util"
)

// DefaultTitle is the sentinel title given to a fresh conversation. A
// conversation is auto-renamed from the first user message only while its
// title still equals this sentinel.
const DefaultTitle = "New chat"

// TitleMaxRunes is the maximum title length derived from a first message.
const TitleMaxRunes = 40

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is a titled, ordered thread of messages. It holds message IDs
// only; the records themselves live in the store's message map.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`

	// MessageIDs is append-only; insertion order is transcript order.
	MessageIDs []string `json:"message_ids"`
}

// NewConversation creates a new conversation with a generated ID and the
// sentinel title.
func NewConversation() *Conversation {
	return &Conversation{
		ID:         NewConversationID(),
		Title:      DefaultTitle,
		CreatedAt:  time.Now(),
		MessageIDs: make([]string, 0),
	}
}

// HasDefaultTitle reports whether the conversation has not been renamed yet.
func (c *Conversation) HasDefaultTitle() bool {
	return c.Title == DefaultTitle
}

// MessageCount returns the number of messages referenced by the conversation.
func (c *Conversation) MessageCount() int {
	return len(c.MessageIDs)
}

// IsEmpty returns true if the conversation references no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.MessageIDs) == 0
}

// Clone returns a copy of the conversation with its own MessageIDs slice.
func (c *Conversation) Clone() *Conversation {
	cp := *c
	cp.MessageIDs = make([]string, len(c.MessageIDs))
	copy(cp.MessageIDs, c.MessageIDs)
	return &cp
}

// =============================================================================
// TITLE DERIVATION
// =============================================================================

// TitleFromMessage derives a conversation title from the first user message:
// the message unmodified when it fits in TitleMaxRunes, otherwise its first
// TitleMaxRunes runes with a truncation marker appended.
func TitleFromMessage(content string) string {
	if util.RuneLen(content) <= TitleMaxRunes {
		return content
	}
	return util.TruncateRunesNoEllipsis(content, TitleMaxRunes) + "..."
}
