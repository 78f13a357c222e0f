// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"github.com/jeranaias/parley/internal/model"
)

// =============================================================================
// ACTION VOCABULARY
// =============================================================================

// Action is one variant of the closed set of state transitions. The apply
// method is unexported so the set cannot grow outside this package.
type Action interface {
	apply(st *State)
}

// StartNewConversation creates a fresh conversation with the sentinel title
// and an empty message list, and makes it the active conversation.
type StartNewConversation struct{}

func (StartNewConversation) apply(st *State) {
	conv := model.NewConversation()
	st.Conversations[conv.ID] = conv
	st.ActiveID = conv.ID
}

// SetActiveConversation selects a conversation by id.
//
// The id is not validated: setting an unknown id is accepted silently and
// ActiveConversation simply returns nil until a valid id is set. See
// DESIGN.md for why this behavior is preserved rather than rejected.
type SetActiveConversation struct {
	ConversationID string
}

func (a SetActiveConversation) apply(st *State) {
	st.ActiveID = a.ConversationID
}

// AddMessage appends a message to a conversation's transcript and inserts
// (or overwrites) the record in the message map. A no-op when the
// conversation does not exist.
//
// On id collision the id is appended to the transcript again while the map
// entry is overwritten: last write wins on content, and the transcript
// renders the surviving record twice.
type AddMessage struct {
	ConversationID string
	Message        *model.Message
}

func (a AddMessage) apply(st *State) {
	if a.Message == nil {
		return
	}
	conv, ok := st.Conversations[a.ConversationID]
	if !ok {
		return
	}
	conv.MessageIDs = append(conv.MessageIDs, a.Message.ID)
	st.Messages[a.Message.ID] = a.Message.Clone()
}

// MessagePatch is a partial update of a message's mutable fields. Nil fields
// are left untouched.
type MessagePatch struct {
	Content *string
	Tone    *string
}

// UpdateMessage merges a patch into an existing message. Used for streaming
// token accumulation and for terminal error text. A no-op when the message
// does not exist.
type UpdateMessage struct {
	MessageID string
	Patch     MessagePatch
}

func (a UpdateMessage) apply(st *State) {
	msg, ok := st.Messages[a.MessageID]
	if !ok {
		return
	}
	if a.Patch.Content != nil {
		msg.Content = *a.Patch.Content
	}
	if a.Patch.Tone != nil {
		msg.Tone = *a.Patch.Tone
	}
}

// HydrateConversation inserts a persisted conversation and its transcript,
// used when loading saved chats at startup. Existing records with the same
// ids are overwritten; the active selection is left untouched.
type HydrateConversation struct {
	Conversation *model.Conversation
	Messages     []*model.Message
}

func (a HydrateConversation) apply(st *State) {
	if a.Conversation == nil {
		return
	}
	st.Conversations[a.Conversation.ID] = a.Conversation.Clone()
	for _, msg := range a.Messages {
		if msg != nil {
			st.Messages[msg.ID] = msg.Clone()
		}
	}
}

// RenameConversation overwrites a conversation's title. A no-op when the
// conversation does not exist.
type RenameConversation struct {
	ConversationID string
	Title          string
}

func (a RenameConversation) apply(st *State) {
	conv, ok := st.Conversations[a.ConversationID]
	if !ok {
		return
	}
	conv.Title = a.Title
}
