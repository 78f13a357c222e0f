// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"strings"
	"time"
)

// =============================================================================
// MOCK RESPONDER
// =============================================================================

// MockResponder produces deterministic local replies when no chat endpoint
// is configured. The reply depends only on the last user message, so demos
// and tests are reproducible.
type MockResponder struct {
	replies []string
}

// canned replies exercise the full markdown surface the renderer supports.
var cannedReplies = []string{
	"That's an interesting point. Let me expand on it:\n\n" +
		"The **key idea** is to keep state transitions in *one place*, so every " +
		"change is easy to trace. Call `Dispatch` with an action and let the " +
		"reducer do the rest.",

	"Here's a small example:\n\n```go\nfunc main() {\n    fmt.Println(\"hello\")\n}\n```\n\n" +
		"Run it with `go run main.go` and you should see the greeting printed.",

	"Good question! There are *two* things to keep in mind:\n\n" +
		"**First**, derived values should be computed from state, never stored " +
		"alongside it. **Second**, reads must never mutate. Stick to those and " +
		"the rest follows.",

	"I'd summarize it like this: prefer `small`, *composable* pieces over one " +
		"**monolithic** abstraction. You can always glue pieces together; " +
		"splitting a monolith later is much harder.",
}

// greetings answered specially so the first exchange feels natural.
var mockGreetings = []string{"hi", "hello", "hey", "yo", "good morning", "good evening"}

// NewMockResponder creates a responder with the built-in reply set.
func NewMockResponder() *MockResponder {
	return &MockResponder{replies: cannedReplies}
}

// Reply picks a deterministic reply for the transcript. The choice hashes
// the last user message so repeating a prompt repeats the answer.
func (m *MockResponder) Reply(messages []Message) *Reply {
	last := lastUserContent(messages)
	lower := strings.ToLower(strings.TrimSpace(last))

	for _, g := range mockGreetings {
		if lower == g || strings.HasPrefix(lower, g+" ") || strings.HasPrefix(lower, g+",") {
			return &Reply{
				Content:   "Hello! I'm running in **offline mode** right now, but happy to chat. What's on your mind?",
				CreatedAt: time.Now(),
			}
		}
	}

	idx := contentHash(last) % uint32(len(m.replies))
	return &Reply{Content: m.replies[idx], CreatedAt: time.Now()}
}

// lastUserContent returns the content of the final user message, or the
// final message of any role when none is marked user.
func lastUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	if len(messages) > 0 {
		return messages[len(messages)-1].Content
	}
	return ""
}

// contentHash is FNV-1a over the string. Stable across runs and platforms.
func contentHash(s string) uint32 {
	const (
		offset32 = 2166136261
		prime32  = 16777619
	)
	h := uint32(offset32)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime32
	}
	return h
}
