// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"testing"

	"github.com/jeranaias/parley/internal/api"
	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/storage"
	"github.com/jeranaias/parley/internal/store"
)

// newTestSession builds a session against the offline mock client with
// persistence in a temp dir.
func newTestSession(t *testing.T) *Session {
	t.Helper()
	cfg := config.Default()
	cfg.Features = "tone=on"
	convStore, err := storage.NewConversationStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("conversation store: %v", err)
	}
	return NewSession(cfg, store.New(), api.NewClient("", ""), convStore)
}

func TestProcessMessage_RecordsBothTurns(t *testing.T) {
	s := newTestSession(t)

	if err := s.processMessage(context.Background(), "hello from the repl"); err != nil {
		t.Fatalf("processMessage: %v", err)
	}

	active := s.store.ActiveConversation()
	if active == nil {
		t.Fatal("no conversation created")
	}
	if active.Title != "hello from the repl" {
		t.Errorf("auto-title = %q", active.Title)
	}

	msgs := s.store.MessagesForConversation(active.ID)
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[1].Content == "" {
		t.Error("assistant reply empty")
	}
	if msgs[1].Tone == "" {
		t.Error("assistant reply should be tone-classified")
	}

	// Persisted to disk.
	metas, err := s.convStore.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(metas) != 1 {
		t.Errorf("persisted conversations = %d, want 1", len(metas))
	}
}

func TestSlashCommand_NewStartsConversation(t *testing.T) {
	s := newTestSession(t)

	keepGoing, err := s.handleSlashCommand("/new")
	if err != nil || !keepGoing {
		t.Fatalf("handleSlashCommand(/new) = %v, %v", keepGoing, err)
	}
	if s.store.ActiveConversation() == nil {
		t.Error("/new should activate a fresh conversation")
	}
}

func TestSlashCommand_QuitEndsSession(t *testing.T) {
	s := newTestSession(t)
	for _, cmd := range []string{"/quit", "/q", "/exit"} {
		keepGoing, err := s.handleSlashCommand(cmd)
		if err != nil {
			t.Errorf("%s returned error: %v", cmd, err)
		}
		if keepGoing {
			t.Errorf("%s should end the session", cmd)
		}
	}
}

func TestSlashCommand_UnknownReportsError(t *testing.T) {
	s := newTestSession(t)
	keepGoing, err := s.handleSlashCommand("/bogus")
	if err == nil {
		t.Error("unknown command should return an error")
	}
	if !keepGoing {
		t.Error("unknown command must not end the session")
	}
}

func TestSwitchConversation(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	if err := s.processMessage(ctx, "first topic"); err != nil {
		t.Fatal(err)
	}
	firstID := s.store.ActiveConversation().ID

	s.store.Dispatch(store.StartNewConversation{})
	if err := s.processMessage(ctx, "second topic"); err != nil {
		t.Fatal(err)
	}

	// Most recent is listed first; entry 2 is the older conversation.
	if err := s.switchConversation([]string{"2"}); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if s.store.ActiveConversation().ID != firstID {
		t.Error("switch did not activate the older conversation")
	}

	if err := s.switchConversation([]string{"99"}); err == nil {
		t.Error("out-of-range index should error")
	}
	if err := s.switchConversation(nil); err == nil {
		t.Error("missing index should error")
	}
}

func TestExportActive(t *testing.T) {
	s := newTestSession(t)

	if err := s.exportActive(); err == nil {
		t.Error("export with no conversation should error")
	}

	if err := s.processMessage(context.Background(), "export me"); err != nil {
		t.Fatal(err)
	}
	if err := s.exportActive(); err != nil {
		t.Errorf("export: %v", err)
	}
}
