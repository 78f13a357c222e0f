// parley - A terminal chat client with streaming replies and markdown rendering.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/jeranaias/parley/internal/api"
	"github.com/jeranaias/parley/internal/cli"
	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/logger"
	"github.com/jeranaias/parley/internal/speech"
	"github.com/jeranaias/parley/internal/storage"
	"github.com/jeranaias/parley/internal/store"
	"github.com/jeranaias/parley/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to config file (default ~/.parley/config.toml)")
		plainMode   = flag.Bool("cli", false, "use the plain readline interface instead of the full-screen one")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("parley %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if err := run(*configPath, *plainMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, plainMode bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	config.SetGlobal(cfg)

	if err := initLogging(cfg); err != nil {
		return err
	}
	defer logger.Global().Close()
	log := logger.Global().Component("main")
	log.Info().Str("version", Version).Msg("starting")

	// Config edits take effect on the next reply, not mid-stream.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watchConfig(ctx, configPath, log)

	convStore, err := openConversationStore(cfg)
	if err != nil {
		return err
	}

	st := store.New()
	hydrate(st, convStore, log)

	client := api.NewClient(cfg.Endpoint.URL, cfg.Endpoint.APIKey)
	if !client.IsConfigured() {
		log.Warn().Msg("no endpoint configured, replies come from the offline responder")
	}

	features := cfg.FeatureSet()
	speechCtl := speech.NewController(nil, nil, features.Enabled(config.FeatureTTS))

	if plainMode || !isInteractiveTerminal() {
		return cli.NewSession(cfg, st, client, convStore).Run(ctx)
	}

	program := tea.NewProgram(
		chat.New(cfg, st, client, speechCtl, convStore),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("interface failed: %w", err)
	}
	return nil
}

// loadConfig loads from the explicit path when given, otherwise from the
// default location. A missing file yields defaults either way.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// initLogging opens the log file named in the config, defaulting to
// parley.log in the config directory.
func initLogging(cfg *config.Config) error {
	path := cfg.Log.Path
	if path == "" {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "parley.log")
	}
	return logger.Init(logger.Config{Level: cfg.Log.Level, Path: path})
}

// watchConfig reloads the config file when it changes on disk. The new
// values become the global config; components pick them up where they read
// it per operation.
func watchConfig(ctx context.Context, explicitPath string, log *logger.Logger) {
	path := explicitPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			log.Warn().Err(err).Msg("config watch disabled")
			return
		}
		path = p
	}

	if err := config.EnsureDir(); err != nil {
		log.Warn().Err(err).Msg("config watch disabled")
		return
	}

	go func() {
		err := config.Watch(ctx, path,
			func(next *config.Config) {
				config.SetGlobal(next)
				log.Info().Msg("config reloaded")
			},
			func(err error) {
				log.Warn().Err(err).Msg("config reload failed")
			},
		)
		if err != nil && err != context.Canceled {
			log.Warn().Err(err).Msg("config watch stopped")
		}
	}()
}

// openConversationStore opens the on-disk conversation store. Failure is
// not fatal: the app still runs, just without persistence.
func openConversationStore(cfg *config.Config) (*storage.ConversationStore, error) {
	var (
		cs  *storage.ConversationStore
		err error
	)
	if cfg.Storage.Dir != "" {
		cs, err = storage.NewConversationStoreWithDir(cfg.Storage.Dir)
	} else {
		cs, err = storage.NewConversationStore()
	}
	if err != nil {
		logger.Global().Warn().Err(err).Msg("persistence disabled")
		return nil, nil
	}
	if cfg.Storage.MaxConversations > 0 {
		cs.MaxConversations = cfg.Storage.MaxConversations
	}
	return cs, nil
}

// hydrate loads persisted conversations into the in-memory store and
// activates the most recent one.
func hydrate(st *store.Store, convStore *storage.ConversationStore, log *logger.Logger) {
	if convStore == nil {
		return
	}
	metas, err := convStore.List()
	if err != nil {
		log.Warn().Err(err).Msg("could not list saved conversations")
		return
	}

	for _, meta := range metas {
		stored, err := convStore.Load(meta.ID)
		if err != nil {
			log.Warn().Err(err).Str("conversation_id", meta.ID).Msg("skipping unreadable conversation")
			continue
		}
		conv, msgs := stored.ToModel()
		st.Dispatch(store.HydrateConversation{Conversation: conv, Messages: msgs})
	}

	if len(metas) > 0 {
		st.Dispatch(store.SetActiveConversation{ConversationID: metas[0].ID})
		log.Info().Int("conversations", len(metas)).Msg("restored saved conversations")
	}
}

// isInteractiveTerminal reports whether stdout is a terminal capable of
// running the full-screen interface.
func isInteractiveTerminal() bool {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	return termenv.NewOutput(os.Stdout).Profile != termenv.Ascii
}
