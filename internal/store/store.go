// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"sort"
	"sync"

	"github.com/jeranaias/parley/internal/model"
)

// =============================================================================
// STATE
// =============================================================================

// State maps conversation ids to conversations and message ids to messages.
// Display order is not implied by the maps; it is computed from CreatedAt.
type State struct {
	Conversations map[string]*model.Conversation
	Messages      map[string]*model.Message
	ActiveID      string
}

// newState returns an empty state.
func newState() State {
	return State{
		Conversations: make(map[string]*model.Conversation),
		Messages:      make(map[string]*model.Message),
	}
}

// clone returns a deep copy of the state.
func (st *State) clone() State {
	cp := State{
		Conversations: make(map[string]*model.Conversation, len(st.Conversations)),
		Messages:      make(map[string]*model.Message, len(st.Messages)),
		ActiveID:      st.ActiveID,
	}
	for id, conv := range st.Conversations {
		cp.Conversations[id] = conv.Clone()
	}
	for id, msg := range st.Messages {
		cp.Messages[id] = msg.Clone()
	}
	return cp
}

// =============================================================================
// STORE
// =============================================================================

// Store is the single-writer state container for one chat session.
type Store struct {
	mu    sync.Mutex
	state State
}

// New creates an empty store.
func New() *Store {
	return &Store{state: newState()}
}

// Dispatch applies one action atomically. Actions are applied in dispatch
// order; an action never partially applies and never fails.
func (s *Store) Dispatch(a Action) {
	if a == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a.apply(&s.state)
}

// =============================================================================
// DERIVED READS
// =============================================================================

// ActiveConversation returns a copy of the currently selected conversation,
// or nil when no conversation is selected or the active id is stale.
func (s *Store) ActiveConversation() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.ActiveID == "" {
		return nil
	}
	conv, ok := s.state.Conversations[s.state.ActiveID]
	if !ok {
		return nil
	}
	return conv.Clone()
}

// Conversation returns a copy of the conversation with the given id.
func (s *Store) Conversation(id string) (*model.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.state.Conversations[id]
	if !ok {
		return nil, false
	}
	return conv.Clone(), true
}

// Message returns a copy of the message with the given id.
func (s *Store) Message(id string) (*model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.state.Messages[id]
	if !ok {
		return nil, false
	}
	return msg.Clone(), true
}

// MessagesForConversation returns the ordered transcript of a conversation.
// Ids that fail to resolve are skipped rather than failing; the invariant
// that every referenced id resolves is maintained by the actions themselves,
// so the filtering is purely defensive.
func (s *Store) MessagesForConversation(conversationID string) []*model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.state.Conversations[conversationID]
	if !ok {
		return nil
	}

	msgs := make([]*model.Message, 0, len(conv.MessageIDs))
	for _, id := range conv.MessageIDs {
		if msg, ok := s.state.Messages[id]; ok {
			msgs = append(msgs, msg.Clone())
		}
	}
	return msgs
}

// ConversationsByRecency returns copies of all conversations sorted by
// CreatedAt descending (newest first), for the sidebar listing.
func (s *Store) ConversationsByRecency() []*model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	convs := make([]*model.Conversation, 0, len(s.state.Conversations))
	for _, conv := range s.state.Conversations {
		convs = append(convs, conv.Clone())
	}
	sort.SliceStable(convs, func(i, j int) bool {
		if convs[i].CreatedAt.Equal(convs[j].CreatedAt) {
			return convs[i].ID < convs[j].ID
		}
		return convs[i].CreatedAt.After(convs[j].CreatedAt)
	})
	return convs
}

// Snapshot returns a deep copy of the entire state, for persistence and
// inspection.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// =============================================================================
// TITLE POLICY
// =============================================================================

// AutoTitle renames a conversation from its first user message. The rename
// happens at most once per conversation: it is gated on the title still
// being the sentinel, so a manual rename is never overwritten.
func (s *Store) AutoTitle(conversationID, firstUserContent string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.state.Conversations[conversationID]
	if !ok || !conv.HasDefaultTitle() {
		return
	}
	conv.Title = model.TitleFromMessage(firstUserContent)
}
