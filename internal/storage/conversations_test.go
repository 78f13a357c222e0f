// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/parley/internal/model"
)

func newTestStore(t *testing.T) *ConversationStore {
	t.Helper()
	s, err := NewConversationStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func sampleConversation(title string, contents ...string) *StoredConversation {
	conv := &StoredConversation{Title: title}
	for i, content := range contents {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		conv.Messages = append(conv.Messages, StoredMessage{
			ID:        model.NewMessageID(),
			Role:      role,
			Content:   content,
			CreatedAt: time.Now(),
		})
	}
	return conv
}

// =============================================================================
// SAVE / LOAD
// =============================================================================

func TestSaveAndLoad(t *testing.T) {
	s := newTestStore(t)

	conv := sampleConversation("Greetings", "hello there", "hi! how can I help?")
	id, err := s.Save(conv)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "conv_") {
		t.Errorf("generated id = %q, want conv_ prefix", id)
	}

	loaded, err := s.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Title != "Greetings" {
		t.Errorf("title = %q", loaded.Title)
	}
	if len(loaded.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(loaded.Messages))
	}
	if loaded.Messages[0].Content != "hello there" {
		t.Errorf("first message = %q", loaded.Messages[0].Content)
	}
	if loaded.Messages[1].Role != "assistant" {
		t.Errorf("second role = %q", loaded.Messages[1].Role)
	}
}

func TestLoad_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Load("conv_missing"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("err = %v, want ErrConversationNotFound", err)
	}
}

func TestSave_PreservesExistingID(t *testing.T) {
	s := newTestStore(t)
	conv := sampleConversation("Fixed", "content")
	conv.ID = "conv_fixed"

	id, err := s.Save(conv)
	if err != nil {
		t.Fatal(err)
	}
	if id != "conv_fixed" {
		t.Errorf("id = %q", id)
	}
}

// =============================================================================
// LIST / SEARCH
// =============================================================================

func TestList_MostRecentFirst(t *testing.T) {
	s := newTestStore(t)

	first := sampleConversation("Old", "early question")
	first.ID = "conv_old"
	first.CreatedAt = time.Now().Add(-time.Hour)
	if _, err := s.Save(first); err != nil {
		t.Fatal(err)
	}

	// Force ordering: updated_at is set by Save, so save the newer one last.
	time.Sleep(5 * time.Millisecond)
	second := sampleConversation("New", "late question")
	second.ID = "conv_new"
	if _, err := s.Save(second); err != nil {
		t.Fatal(err)
	}

	metas, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 2 {
		t.Fatalf("metas = %d, want 2", len(metas))
	}
	if metas[0].ID != "conv_new" {
		t.Errorf("first listed = %s, want conv_new", metas[0].ID)
	}
	if metas[0].Preview != "late question" {
		t.Errorf("preview = %q", metas[0].Preview)
	}
}

func TestList_EmptyDir(t *testing.T) {
	s := newTestStore(t)
	metas, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 0 {
		t.Errorf("metas = %v, want empty", metas)
	}
}

func TestSearch_MatchesTitleAndContent(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Save(sampleConversation("Go generics", "explain type parameters")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(sampleConversation("Dinner plans", "pasta tonight?")); err != nil {
		t.Fatal(err)
	}

	byTitle, err := s.Search("generics")
	if err != nil {
		t.Fatal(err)
	}
	if len(byTitle) != 1 || byTitle[0].Title != "Go generics" {
		t.Errorf("byTitle = %v", byTitle)
	}

	byContent, err := s.Search("pasta")
	if err != nil {
		t.Fatal(err)
	}
	if len(byContent) != 1 || byContent[0].Title != "Dinner plans" {
		t.Errorf("byContent = %v", byContent)
	}
}

// =============================================================================
// DELETE / LIMIT
// =============================================================================

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	id, err := s.Save(sampleConversation("Gone", "bye"))
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Delete(id); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(id); !errors.Is(err, ErrConversationNotFound) {
		t.Error("conversation still loadable after delete")
	}
	if err := s.Delete(id); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestSave_EnforcesLimit(t *testing.T) {
	s := newTestStore(t)
	s.MaxConversations = 3

	for i := 0; i < 5; i++ {
		if _, err := s.Save(sampleConversation("Conv", "message")); err != nil {
			t.Fatal(err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	metas, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 3 {
		t.Errorf("stored = %d, want 3 after pruning", len(metas))
	}
}

// =============================================================================
// MODEL BRIDGE
// =============================================================================

func TestFromModelToModelRoundTrip(t *testing.T) {
	conv := model.NewConversation()
	conv.Title = "Round trip"

	user := model.NewUserMessage("question")
	user.Tone = "inquisitive"
	asst := model.NewAssistantMessage()
	asst.Content = "answer"
	msgs := []*model.Message{user, asst}
	conv.MessageIDs = []string{user.ID, asst.ID}

	stored := FromModel(conv, msgs)
	back, backMsgs := stored.ToModel()

	if back.ID != conv.ID || back.Title != conv.Title {
		t.Errorf("conversation identity lost: %+v", back)
	}
	if len(back.MessageIDs) != 2 || back.MessageIDs[0] != user.ID {
		t.Errorf("message ids = %v", back.MessageIDs)
	}
	if len(backMsgs) != 2 {
		t.Fatalf("messages = %d", len(backMsgs))
	}
	if backMsgs[0].Role != model.RoleUser || backMsgs[0].Tone != "inquisitive" {
		t.Errorf("first message = %+v", backMsgs[0])
	}
	if backMsgs[1].Role != model.RoleAssistant || backMsgs[1].Content != "answer" {
		t.Errorf("second message = %+v", backMsgs[1])
	}
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExportMarkdown(t *testing.T) {
	conv := sampleConversation("Export me", "what's up?", "not much")
	conv.CreatedAt = time.Now()

	md := conv.ExportMarkdown()
	if !strings.Contains(md, "# Export me") {
		t.Error("title heading missing")
	}
	if !strings.Contains(md, "**User**") || !strings.Contains(md, "**Assistant**") {
		t.Error("role labels missing")
	}
	if !strings.Contains(md, "what's up?") {
		t.Error("message content missing")
	}
}

func TestExportJSON(t *testing.T) {
	conv := sampleConversation("JSON", "hello")
	data, err := conv.ExportJSON()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"title": "JSON"`) {
		t.Errorf("export = %s", data)
	}
}
