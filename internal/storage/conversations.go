// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation persistence for parley.
//
// Each conversation lives in its own JSON file under
// ~/.parley/conversations/, named by conversation ID. Writes are atomic so
// a crash mid-save never corrupts an existing transcript.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/util"
)

// =============================================================================
// STORED TYPES
// =============================================================================

// StoredConversation is the on-disk form of a conversation with its
// transcript inlined in order.
type StoredConversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []StoredMessage `json:"messages"`
}

// StoredMessage is the on-disk form of a message.
type StoredMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Tone      string    `json:"tone,omitempty"`
}

// ConversationMeta is the listing view of a stored conversation.
type ConversationMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview"`
}

// FromModel converts a conversation and its ordered transcript into the
// stored form.
func FromModel(conv *model.Conversation, msgs []*model.Message) *StoredConversation {
	stored := &StoredConversation{
		ID:        conv.ID,
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt,
		Messages:  make([]StoredMessage, 0, len(msgs)),
	}
	for _, m := range msgs {
		stored.Messages = append(stored.Messages, StoredMessage{
			ID:        m.ID,
			Role:      m.Role.String(),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
			Tone:      m.Tone,
		})
	}
	return stored
}

// ToModel converts the stored form back into a conversation and its
// messages, ready for store hydration.
func (c *StoredConversation) ToModel() (*model.Conversation, []*model.Message) {
	conv := &model.Conversation{
		ID:         c.ID,
		Title:      c.Title,
		CreatedAt:  c.CreatedAt,
		MessageIDs: make([]string, 0, len(c.Messages)),
	}
	msgs := make([]*model.Message, 0, len(c.Messages))
	for _, m := range c.Messages {
		conv.MessageIDs = append(conv.MessageIDs, m.ID)
		msgs = append(msgs, &model.Message{
			ID:        m.ID,
			Role:      model.Role(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
			Tone:      m.Tone,
		})
	}
	return conv, msgs
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore handles conversation persistence.
type ConversationStore struct {
	// BaseDir is the directory holding conversation files.
	BaseDir string

	// MaxConversations caps stored conversations; oldest by update time
	// are pruned past the cap. Zero disables pruning.
	MaxConversations int
}

// NewConversationStore creates a store rooted at ~/.parley/conversations.
func NewConversationStore() (*ConversationStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewConversationStoreWithDir(filepath.Join(homeDir, ".parley", "conversations"))
}

// NewConversationStoreWithDir creates a store with a custom directory.
func NewConversationStoreWithDir(baseDir string) (*ConversationStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &ConversationStore{
		BaseDir:          baseDir,
		MaxConversations: 200,
	}, nil
}

// =============================================================================
// SAVE
// =============================================================================

// Save persists a conversation and returns its ID.
func (s *ConversationStore) Save(conv *StoredConversation) (string, error) {
	if conv.ID == "" {
		conv.ID = model.NewConversationID()
	}

	conv.UpdatedAt = time.Now()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = conv.UpdatedAt
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return "", err
	}

	if err := util.AtomicWriteFile(s.filePath(conv.ID), data, 0644); err != nil {
		return "", err
	}

	if s.MaxConversations > 0 {
		s.enforceLimit()
	}
	return conv.ID, nil
}

// enforceLimit removes the oldest conversations once over the cap.
func (s *ConversationStore) enforceLimit() {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxConversations {
		return
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.Before(metas[j].UpdatedAt)
	})

	excess := len(metas) - s.MaxConversations
	for i := 0; i < excess; i++ {
		s.Delete(metas[i].ID)
	}
}

// =============================================================================
// LOAD / LIST
// =============================================================================

// Load retrieves a conversation by ID.
func (s *ConversationStore) Load(id string) (*StoredConversation, error) {
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	var conv StoredConversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// List returns metadata for all saved conversations, most recently updated
// first. Corrupted files are skipped rather than failing the whole listing.
func (s *ConversationStore) List() ([]ConversationMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ConversationMeta{}, nil
		}
		return nil, err
	}

	var metas []ConversationMeta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		conv, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}

		metas = append(metas, ConversationMeta{
			ID:           conv.ID,
			Title:        conv.Title,
			CreatedAt:    conv.CreatedAt,
			UpdatedAt:    conv.UpdatedAt,
			MessageCount: len(conv.Messages),
			Preview:      conv.Preview(),
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Search finds conversations whose title, preview, or message content
// contains the query, case-insensitive. An empty query lists everything.
func (s *ConversationStore) Search(query string) ([]ConversationMeta, error) {
	all, err := s.List()
	if err != nil || query == "" {
		return all, err
	}

	query = strings.ToLower(query)
	var results []ConversationMeta
	for _, meta := range all {
		if strings.Contains(strings.ToLower(meta.Title), query) ||
			strings.Contains(strings.ToLower(meta.Preview), query) {
			results = append(results, meta)
			continue
		}

		conv, err := s.Load(meta.ID)
		if err != nil {
			continue
		}
		for _, msg := range conv.Messages {
			if strings.Contains(strings.ToLower(msg.Content), query) {
				results = append(results, meta)
				break
			}
		}
	}
	return results, nil
}

// =============================================================================
// DELETE
// =============================================================================

// Delete removes a conversation by ID.
func (s *ConversationStore) Delete(id string) error {
	if err := os.Remove(s.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrConversationNotFound
		}
		return err
	}
	return nil
}

// Clear removes all saved conversations.
func (s *ConversationStore) Clear() error {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			os.Remove(filepath.Join(s.BaseDir, entry.Name()))
		}
	}
	return nil
}

// filePath returns the file path for a conversation ID.
func (s *ConversationStore) filePath(id string) string {
	return filepath.Join(s.BaseDir, id+".json")
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrConversationNotFound is returned when a conversation doesn't exist.
// Use errors.Is(err, ErrConversationNotFound) to check for this error.
var ErrConversationNotFound = &ConversationError{Message: "conversation not found"}

// ConversationError represents a conversation-related error.
type ConversationError struct {
	Message string
}

// Error implements the error interface.
func (e *ConversationError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing conversation errors.
func (e *ConversationError) Is(target error) bool {
	t, ok := target.(*ConversationError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown exports the conversation as a Markdown document with
// title, timestamps, and role-labeled messages.
func (c *StoredConversation) ExportMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# " + c.Title + "\n\n")
	sb.WriteString("Created: " + c.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range c.Messages {
		role := "**User**"
		if msg.Role == "assistant" {
			role = "**Assistant**"
		}
		sb.WriteString(role + " (" + msg.CreatedAt.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}

// ExportJSON exports the conversation as pretty-printed JSON.
func (c *StoredConversation) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// WriteExport writes the conversation's Markdown export under
// baseDir/exports and returns the written path.
func WriteExport(baseDir string, c *StoredConversation) (string, error) {
	dir := filepath.Join(baseDir, "exports")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, c.ID+".md")
	if err := os.WriteFile(path, []byte(c.ExportMarkdown()), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Preview returns the first user message truncated for listings.
func (c *StoredConversation) Preview() string {
	for _, msg := range c.Messages {
		if msg.Role == "user" && msg.Content != "" {
			return util.TruncateRunes(util.CollapseNewlines(msg.Content), 80)
		}
	}
	return ""
}
