// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/parley/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one turn in a conversation. ID, Role and CreatedAt are fixed at
// creation; Content is mutated in place while an assistant reply streams in.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// Tone is an optional classification of an assistant reply ("positive",
	// "negative", ...). Empty when tone coloring is disabled.
	Tone string `json:"tone,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        NewMessageID(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates an empty assistant message. Content is filled
// in by streaming updates.
func NewAssistantMessage() *Message {
	return NewMessage(RoleAssistant, "")
}

// Preview returns a one-line truncated preview of the message content.
func (m *Message) Preview(maxRunes int) string {
	return util.TruncateRunes(util.CollapseNewlines(m.Content), maxRunes)
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// Clone returns a copy of the message.
func (m *Message) Clone() *Message {
	cp := *m
	return &cp
}

// =============================================================================
// ID GENERATION
// =============================================================================

// NewMessageID creates a unique message ID.
func NewMessageID() string {
	return "msg_" + uuid.NewString()
}

// NewConversationID creates a unique conversation ID.
func NewConversationID() string {
	return "conv_" + uuid.NewString()
}
