// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley/internal/api"
	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/logger"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/speech"
	"github.com/jeranaias/parley/internal/storage"
	"github.com/jeranaias/parley/internal/store"
	"github.com/jeranaias/parley/internal/stream"
	"github.com/jeranaias/parley/internal/tone"
)

// =============================================================================
// STREAM STATE
// =============================================================================

// streamState is the shared mutable state of one in-flight reply stream.
// The producer goroutine writes; the update loop reads on each tick.
type streamState struct {
	buffer   *stream.Buffer
	done     atomic.Bool
	canceled atomic.Bool
}

func newStreamState() *streamState {
	return &streamState{buffer: stream.NewBuffer()}
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	store     *store.Store
	client    *api.Client
	speech    *speech.Controller
	convStore *storage.ConversationStore
	cfg       *config.Config
	log       *logger.Logger

	keys     KeyMap
	composer textarea.Model
	viewport viewport.Model

	width  int
	height int
	ready  bool

	sidebarFocus bool
	sidebarIndex int

	// Streaming state. pendingID is the assistant message being filled;
	// empty when idle.
	pendingID   string
	producer    *stream.Producer
	streamSt    *streamState
	fetching    bool
	fetchCancel context.CancelFunc

	toneOn  bool
	voiceOn bool
	ttsOn   bool

	status string
}

// New creates the chat model. convStore may be nil to disable persistence.
func New(cfg *config.Config, st *store.Store, client *api.Client, speechCtl *speech.Controller, convStore *storage.ConversationStore) Model {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.Prompt = "> "
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.Focus()

	features := cfg.FeatureSet()

	return Model{
		store:     st,
		client:    client,
		speech:    speechCtl,
		convStore: convStore,
		cfg:       cfg,
		log:       logger.Global().Component("chat"),
		keys:      DefaultKeyMap(),
		composer:  ta,
		toneOn:    features.Enabled(config.FeatureTone),
		voiceOn:   features.Enabled(config.FeatureVoice),
		ttsOn:     features.Enabled(config.FeatureTTS),
	}
}

// Init starts cursor blinking.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// streamingActive reports whether a reply is being fetched or streamed.
func (m Model) streamingActive() bool {
	return m.fetching || m.pendingID != ""
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case replyMsg:
		return m.handleReply(msg)

	case streamTickMsg:
		return m.handleStreamTick()

	case transcriptMsg:
		return m.handleTranscript(msg)

	case exportedMsg:
		if msg.err != nil {
			m.status = "Export failed: " + msg.err.Error()
		} else {
			m.status = "Exported to " + msg.path
		}
		return m, nil
	}

	return m.updateComposer(msg)
}

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	composerHeight := 3
	chromeHeight := 2 // header + status bar
	bodyHeight := m.height - composerHeight - chromeHeight - 2
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	contentWidth := m.width - sidebarWidth - 2
	if contentWidth < 20 {
		contentWidth = 20
	}

	if m.viewport.Width == 0 {
		m.viewport = viewport.New(contentWidth, bodyHeight)
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = bodyHeight
	}
	m.composer.SetWidth(m.width - 2)

	m.refreshTranscript()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.persistActive()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		return m.cancelStream(), nil

	case key.Matches(msg, m.keys.NewChat):
		if m.streamingActive() {
			return m, nil
		}
		m.persistActive()
		m.store.Dispatch(store.StartNewConversation{})
		m.sidebarIndex = 0
		m.composer.Reset()
		m.refreshTranscript()
		return m, nil

	case key.Matches(msg, m.keys.ToggleFocus):
		m.sidebarFocus = !m.sidebarFocus
		if m.sidebarFocus {
			m.composer.Blur()
			m.sidebarIndex = m.activeIndex()
		} else {
			m.composer.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keys.Voice):
		if !m.voiceOn || !m.speech.InputAvailable() || m.streamingActive() {
			return m, nil
		}
		m.status = "Listening..."
		return m, listenCmd(m.speech)

	case key.Matches(msg, m.keys.Export):
		return m, m.exportActive()
	}

	if m.sidebarFocus {
		return m.handleSidebarKey(msg)
	}

	if key.Matches(msg, m.keys.Submit) {
		return m.submit()
	}

	return m.updateComposer(msg)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	convs := m.store.ConversationsByRecency()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.sidebarIndex > 0 {
			m.sidebarIndex--
		}
	case key.Matches(msg, m.keys.Down):
		if m.sidebarIndex < len(convs)-1 {
			m.sidebarIndex++
		}
	case key.Matches(msg, m.keys.Select):
		if m.streamingActive() {
			return m, nil
		}
		if m.sidebarIndex >= 0 && m.sidebarIndex < len(convs) {
			m.persistActive()
			m.store.Dispatch(store.SetActiveConversation{ConversationID: convs[m.sidebarIndex].ID})
			m.sidebarFocus = false
			m.composer.Focus()
			m.refreshTranscript()
		}
	}
	return m, nil
}

func (m Model) updateComposer(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

// =============================================================================
// SUBMIT AND STREAM
// =============================================================================

// submit turns the composer content into a user message and requests the
// assistant reply.
func (m Model) submit() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.composer.Value())
	if content == "" || m.streamingActive() {
		return m, nil
	}
	m.composer.Reset()
	m.status = ""

	active := m.store.ActiveConversation()
	if active == nil {
		m.store.Dispatch(store.StartNewConversation{})
		active = m.store.ActiveConversation()
	}

	userMsg := model.NewUserMessage(content)
	if m.toneOn {
		userMsg.Tone = tone.Classify(content).String()
	}
	m.store.Dispatch(store.AddMessage{ConversationID: active.ID, Message: userMsg})
	m.store.AutoTitle(active.ID, content)

	pending := model.NewAssistantMessage()
	m.store.Dispatch(store.AddMessage{ConversationID: active.ID, Message: pending})
	m.pendingID = pending.ID
	m.fetching = true

	ctx, cancel := context.WithCancel(context.Background())
	m.fetchCancel = cancel

	transcript := m.store.MessagesForConversation(active.ID)
	// Exclude the still-empty pending assistant message from the request.
	wire := api.FromTranscript(transcript[:len(transcript)-1])

	m.log.Info().Str("conversation_id", active.ID).Int("messages", len(wire)).Msg("reply requested")
	m.refreshTranscript()
	return m, fetchReplyCmd(ctx, m.client, pending.ID, wire)
}

// handleReply begins streaming the reply, or applies the apology text when
// the endpoint failed.
func (m Model) handleReply(msg replyMsg) (tea.Model, tea.Cmd) {
	if msg.messageID != m.pendingID {
		return m, nil // stale reply for an abandoned message
	}
	m.fetching = false
	m.fetchCancel = nil

	if msg.err != nil {
		m.log.Error().Err(msg.err).Msg("completion failed")
		apology := api.ApologyReply
		m.store.Dispatch(store.UpdateMessage{
			MessageID: m.pendingID,
			Patch:     store.MessagePatch{Content: &apology},
		})
		return m.finishStream(true)
	}

	ss := newStreamState()
	m.streamSt = ss
	m.producer = stream.NewProducerWithInterval(msg.content, m.cfg.StreamInterval())
	m.producer.Start(ss.buffer.Write, func(canceled bool) {
		ss.canceled.Store(canceled)
		ss.done.Store(true)
	})
	return m, streamTickCmd()
}

// handleStreamTick drains buffered chunks into the pending message.
func (m Model) handleStreamTick() (tea.Model, tea.Cmd) {
	if m.streamSt == nil {
		return m, nil
	}

	if chunk, ok := m.streamSt.buffer.Flush(); ok {
		m.appendToPending(chunk)
	}

	if m.streamSt.done.Load() {
		if chunk, ok := m.streamSt.buffer.ForceFlush(); ok {
			m.appendToPending(chunk)
		}
		return m.finishStream(false)
	}
	return m, streamTickCmd()
}

// appendToPending appends streamed content to the pending assistant
// message. Appending is the only content mutation during streaming, so a
// cancel simply stops further appends.
func (m *Model) appendToPending(chunk string) {
	current, ok := m.store.Message(m.pendingID)
	if !ok {
		return
	}
	next := current.Content + chunk
	m.store.Dispatch(store.UpdateMessage{
		MessageID: m.pendingID,
		Patch:     store.MessagePatch{Content: &next},
	})
	m.refreshTranscript()
}

// finishStream finalizes the pending message: classify its tone, persist
// the conversation, and optionally speak the reply.
func (m Model) finishStream(failed bool) (tea.Model, tea.Cmd) {
	canceled := m.streamSt != nil && m.streamSt.canceled.Load()

	var speakText string
	if final, ok := m.store.Message(m.pendingID); ok {
		if m.toneOn && !failed && final.Content != "" {
			t := tone.Classify(final.Content).String()
			m.store.Dispatch(store.UpdateMessage{
				MessageID: m.pendingID,
				Patch:     store.MessagePatch{Tone: &t},
			})
		}
		if !failed && !canceled {
			speakText = final.Content
		}
	}

	m.pendingID = ""
	m.producer = nil
	m.streamSt = nil
	m.persistActive()
	m.refreshTranscript()

	if m.ttsOn && speakText != "" {
		return m, announceCmd(m.speech, speakText)
	}
	return m, nil
}

// cancelStream stops an in-flight reply. Content already applied stays.
func (m Model) cancelStream() Model {
	if m.fetching && m.fetchCancel != nil {
		m.fetchCancel()
		return m
	}
	if m.producer != nil {
		m.producer.Cancel()
	}
	return m
}

// handleTranscript inserts a recognized utterance into the composer.
func (m Model) handleTranscript(msg transcriptMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = "Voice input unavailable"
		return m, nil
	}
	m.status = ""
	existing := m.composer.Value()
	if existing != "" && !strings.HasSuffix(existing, " ") {
		existing += " "
	}
	m.composer.SetValue(existing + msg.text)
	return m, nil
}

// =============================================================================
// PERSISTENCE AND EXPORT
// =============================================================================

// persistActive saves the active conversation to disk. Failures are logged,
// never surfaced as UI errors.
func (m Model) persistActive() {
	if m.convStore == nil {
		return
	}
	active := m.store.ActiveConversation()
	if active == nil || len(active.MessageIDs) == 0 {
		return
	}
	msgs := m.store.MessagesForConversation(active.ID)
	if _, err := m.convStore.Save(storage.FromModel(active, msgs)); err != nil {
		m.log.Error().Err(err).Str("conversation_id", active.ID).Msg("failed to persist conversation")
	}
}

// exportActive writes the active conversation as Markdown under
// ~/.parley/exports.
func (m Model) exportActive() tea.Cmd {
	active := m.store.ActiveConversation()
	if active == nil {
		return nil
	}
	msgs := m.store.MessagesForConversation(active.ID)
	stored := storage.FromModel(active, msgs)

	convStore := m.convStore
	return func() tea.Msg {
		dir, err := config.Dir()
		if convStore != nil {
			dir, err = filepath.Dir(convStore.BaseDir), nil
		}
		if err != nil {
			return exportedMsg{err: err}
		}
		path, err := storage.WriteExport(dir, stored)
		if err != nil {
			return exportedMsg{err: err}
		}
		return exportedMsg{path: path}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// activeIndex returns the sidebar index of the active conversation.
func (m Model) activeIndex() int {
	active := m.store.ActiveConversation()
	if active == nil {
		return 0
	}
	for i, conv := range m.store.ConversationsByRecency() {
		if conv.ID == active.ID {
			return i
		}
	}
	return 0
}
