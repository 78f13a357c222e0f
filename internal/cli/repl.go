// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/jeranaias/parley/internal/api"
	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/logger"
	"github.com/jeranaias/parley/internal/markdown"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/storage"
	"github.com/jeranaias/parley/internal/store"
	"github.com/jeranaias/parley/internal/tone"
	"github.com/jeranaias/parley/internal/ui/components"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)
)

// =============================================================================
// SESSION
// =============================================================================

// Session holds the state for one REPL run. It shares the conversation store
// with the full-screen interface, so both front ends read and write the same
// state and the same files on disk.
type Session struct {
	store     *store.Store
	client    *api.Client
	convStore *storage.ConversationStore
	cfg       *config.Config
	log       *logger.Logger

	toneOn bool
	input  *LineReader

	startTime time.Time
	replies   int
}

// NewSession creates a REPL session. convStore may be nil to disable
// persistence.
func NewSession(cfg *config.Config, st *store.Store, client *api.Client, convStore *storage.ConversationStore) *Session {
	return &Session{
		store:     st,
		client:    client,
		convStore: convStore,
		cfg:       cfg,
		log:       logger.Global().Component("cli"),
		toneOn:    cfg.FeatureSet().Enabled(config.FeatureTone),
		startTime: time.Now(),
	}
}

// Run drives the read-eval-print loop until the user quits or the context
// is canceled.
func (s *Session) Run(ctx context.Context) error {
	s.input = NewLineReader()
	defer s.input.Close()

	s.printWelcome()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		input, err := s.input.ReadInput(promptStyle.Render("parley> "))
		if err != nil {
			// Ctrl+C or Ctrl+D both end the session cleanly.
			if err != liner.ErrPromptAborted {
				s.log.Debug().Err(err).Msg("input closed")
			}
			fmt.Println()
			s.printGoodbye()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			keepGoing, err := s.handleSlashCommand(input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !keepGoing {
				s.printGoodbye()
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			s.printGoodbye()
			return nil
		}

		if err := s.processMessage(ctx, input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
	}
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// processMessage records the user turn, fetches a reply, and prints it. The
// assistant message always ends up in the store: the apology text stands in
// when the endpoint fails.
func (s *Session) processMessage(ctx context.Context, input string) error {
	active := s.store.ActiveConversation()
	if active == nil {
		s.store.Dispatch(store.StartNewConversation{})
		active = s.store.ActiveConversation()
	}

	userMsg := model.NewUserMessage(input)
	if s.toneOn {
		userMsg.Tone = tone.Classify(input).String()
	}
	s.store.Dispatch(store.AddMessage{ConversationID: active.ID, Message: userMsg})
	s.store.AutoTitle(active.ID, input)

	start := time.Now()
	wire := api.FromTranscript(s.store.MessagesForConversation(active.ID))
	reply, err := s.client.Complete(ctx, wire)

	assistant := model.NewAssistantMessage()
	if err != nil {
		s.log.Error().Err(err).Msg("completion failed")
		assistant.Content = api.ApologyReply
	} else {
		assistant.Content = reply.Content
		if s.toneOn {
			assistant.Tone = tone.Classify(reply.Content).String()
		}
	}
	s.store.Dispatch(store.AddMessage{ConversationID: active.ID, Message: assistant})
	s.persistActive()
	s.replies++

	fmt.Println()
	s.printReply(assistant.Content)
	fmt.Println()

	if s.toneOn && assistant.Tone != "" && assistant.Tone != "neutral" {
		fmt.Fprintf(os.Stderr, "%s %s | %s\n",
			infoStyle.Render("[Reply]"),
			assistant.Tone,
			time.Since(start).Round(time.Millisecond))
	} else {
		fmt.Fprintf(os.Stderr, "%s %s\n",
			infoStyle.Render("[Reply]"),
			time.Since(start).Round(time.Millisecond))
	}
	fmt.Println()

	return nil
}

// printReply renders markdown on a TTY and falls back to raw text when
// output is piped.
func (s *Session) printReply(content string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Println(content)
		return
	}
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		width = w - 2
	}
	fmt.Println(components.RenderMarkdown(markdown.Render(content), width))
}

// persistActive saves the active conversation. Failures are logged only.
func (s *Session) persistActive() {
	if s.convStore == nil {
		return
	}
	active := s.store.ActiveConversation()
	if active == nil || len(active.MessageIDs) == 0 {
		return
	}
	msgs := s.store.MessagesForConversation(active.ID)
	if _, err := s.convStore.Save(storage.FromModel(active, msgs)); err != nil {
		s.log.Error().Err(err).Str("conversation_id", active.ID).Msg("failed to persist conversation")
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes a slash command. Returns false when the
// session should end.
func (s *Session) handleSlashCommand(cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		s.printHelp()
		return true, nil

	case "/new", "/n":
		s.persistActive()
		s.store.Dispatch(store.StartNewConversation{})
		fmt.Println(commandStyle.Render("[Started a new conversation]"))
		return true, nil

	case "/list", "/l":
		s.printConversationList()
		return true, nil

	case "/switch", "/sw":
		return true, s.switchConversation(args)

	case "/history":
		s.printHistory()
		return true, nil

	case "/export", "/e":
		return true, s.exportActive()

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// switchConversation activates the conversation at the given /list index.
func (s *Session) switchConversation(args []string) error {
	convs := s.store.ConversationsByRecency()
	if len(convs) == 0 {
		return fmt.Errorf("no conversations yet")
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: /switch <number> (see /list)")
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(convs) {
		return fmt.Errorf("invalid conversation number: %s", args[0])
	}

	s.persistActive()
	target := convs[n-1]
	s.store.Dispatch(store.SetActiveConversation{ConversationID: target.ID})
	fmt.Printf("%s %s\n",
		commandStyle.Render("[Switched to]"),
		target.Title)
	return nil
}

// exportActive writes the active conversation as Markdown under the exports
// directory and prints the path.
func (s *Session) exportActive() error {
	active := s.store.ActiveConversation()
	if active == nil || len(active.MessageIDs) == 0 {
		return fmt.Errorf("nothing to export yet")
	}

	msgs := s.store.MessagesForConversation(active.ID)
	stored := storage.FromModel(active, msgs)

	dir, err := s.exportBaseDir()
	if err != nil {
		return err
	}
	path, err := storage.WriteExport(dir, stored)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", commandStyle.Render("[Exported]"), path)
	return nil
}

// exportBaseDir places exports next to the conversation files so everything
// a user might back up lives under one directory.
func (s *Session) exportBaseDir() (string, error) {
	if s.convStore != nil {
		return filepath.Dir(s.convStore.BaseDir), nil
	}
	return config.Dir()
}

// =============================================================================
// DISPLAY
// =============================================================================

func (s *Session) printWelcome() {
	fmt.Println()
	fmt.Println(welcomeStyle.Render("parley"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))

	if s.client.IsConfigured() {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Endpoint:"),
			commandStyle.Render(s.cfg.Endpoint.URL))
	} else {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Endpoint:"),
			warningStyle.Render("not configured (offline replies)"))
	}
	if active := s.store.ActiveConversation(); active != nil {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Resuming:"),
			commandStyle.Render(active.Title))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Type a message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

func (s *Session) printHelp() {
	fmt.Println()
	fmt.Println(promptStyle.Render("Available Commands"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/new, /n", "Start a new conversation"},
		{"/list, /l", "List saved conversations"},
		{"/switch <n>", "Switch to conversation n from /list"},
		{"/history", "Show the current conversation"},
		{"/export, /e", "Export the current conversation as Markdown"},
		{"/quit, /q", "Exit"},
	}
	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-13s", c.cmd)),
			infoStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Tip: Ctrl+D exits and saves input history"))
	fmt.Println()
}

func (s *Session) printConversationList() {
	convs := s.store.ConversationsByRecency()
	if len(convs) == 0 {
		fmt.Println(infoStyle.Render("[No conversations yet]"))
		return
	}

	activeID := ""
	if active := s.store.ActiveConversation(); active != nil {
		activeID = active.ID
	}

	fmt.Println()
	for i, conv := range convs {
		marker := "  "
		title := conv.Title
		if conv.ID == activeID {
			marker = commandStyle.Render("* ")
			title = commandStyle.Render(title)
		}
		fmt.Printf("%s%d. %s %s\n",
			marker,
			i+1,
			title,
			infoStyle.Render(fmt.Sprintf("(%d messages)", len(conv.MessageIDs))))
	}
	fmt.Println()
}

func (s *Session) printHistory() {
	active := s.store.ActiveConversation()
	if active == nil {
		fmt.Println(infoStyle.Render("[No active conversation]"))
		return
	}
	msgs := s.store.MessagesForConversation(active.ID)
	if len(msgs) == 0 {
		fmt.Println(infoStyle.Render("[No messages yet]"))
		return
	}

	fmt.Println()
	for i, msg := range msgs {
		role := msg.Role.DisplayName()
		switch msg.Role {
		case model.RoleUser:
			role = lipgloss.NewStyle().Foreground(styles.Cyan).Render(role)
		case model.RoleAssistant:
			role = lipgloss.NewStyle().Foreground(styles.Purple).Render(role)
		}
		fmt.Printf("  %d. %s: %s\n", i+1, role, msg.Preview(100))
	}
	fmt.Println()
}

func (s *Session) printGoodbye() {
	if s.replies == 0 {
		fmt.Println(infoStyle.Render("Goodbye!"))
		return
	}
	elapsed := time.Since(s.startTime).Round(time.Second)
	fmt.Printf("%s %d replies in %s. Goodbye!\n",
		infoStyle.Render("[Session]"),
		s.replies,
		elapsed)
}
