// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// env.go - Wiring shared by every command: config, logging, store, client.

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/sladenchat-tui/internal/config"
	"github.com/jeranaias/sladenchat-tui/internal/i18n"
	"github.com/jeranaias/sladenchat-tui/internal/lightrag"
	"github.com/jeranaias/sladenchat-tui/internal/logging"
	"github.com/jeranaias/sladenchat-tui/internal/querymode"
	"github.com/jeranaias/sladenchat-tui/internal/render"
	"github.com/jeranaias/sladenchat-tui/internal/session"
	"github.com/jeranaias/sladenchat-tui/internal/storage"
	"github.com/jeranaias/sladenchat-tui/internal/ui/styles"
	"github.com/jeranaias/sladenchat-tui/internal/util"
)

// Env carries the dependencies a command runs against.
type Env struct {
	Config  *config.Config
	Client  *lightrag.Client
	Store   storage.ConversationStore
	Modes   *querymode.Selector
	Printer *i18n.Printer
	Logger  *zap.Logger

	// Renderer formats answers as markdown; nil prints them as they are.
	Renderer *render.Renderer

	// Settings is read at the start of every turn.
	Settings func() session.Settings

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// HistoryFile keeps line-mode chat input across runs; empty disables it.
	HistoryFile string

	Now func() time.Time
}

// NewController creates a session controller over the env's store and client.
func (e *Env) NewController() (*session.Controller, error) {
	return session.New(session.Options{
		Backend:  e.Client,
		Store:    e.Store,
		Modes:    e.Modes,
		Settings: e.Settings,
		Printer:  e.Printer,
		Logger:   e.Logger,
	})
}

// Close releases the store and flushes the log.
func (e *Env) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			e.Logger.Warn("failed to close store", zap.Error(err))
		}
	}
	_ = e.Logger.Sync()
}

// SessionSettings maps the [query] config section onto per-turn settings.
// noStream forces single-shot requests regardless of the config.
func SessionSettings(cfg *config.Config, noStream bool) session.Settings {
	q := cfg.Query
	return session.Settings{
		HistoryTurns: q.HistoryTurns,
		Stream:       q.Stream && !noStream,
		Passthrough: lightrag.Passthrough{
			ResponseType:             q.ResponseType,
			TopK:                     q.TopK,
			ChunkTopK:                q.ChunkTopK,
			MaxTokenForTextUnit:      q.MaxTokenForTextUnit,
			MaxTokenForGlobalContext: q.MaxTokenForGlobalContext,
			MaxTokenForLocalContext:  q.MaxTokenForLocalContext,
			OnlyNeedContext:          q.OnlyNeedContext,
			OnlyNeedPrompt:           q.OnlyNeedPrompt,
			HLKeywords:               q.HLKeywords,
			LLKeywords:               q.LLKeywords,
			UserPrompt:               q.UserPrompt,
		},
	}
}

// persistMode saves a newly selected mode to the config file.
func persistMode(mode querymode.Mode) error {
	return config.Update(func(cfg *config.Config) error {
		cfg.Query.Mode = mode.String()
		return nil
	})
}

// Bootstrap loads the config and builds the env for cmd. The TUI owns the
// terminal, so it never mirrors logs to stderr and never gets a line-mode
// renderer.
func Bootstrap(cmd Command, args Args) (*Env, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFrom(util.ExpandHome(args.ConfigPath))
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	config.SetGlobal(cfg)

	logger, err := logging.New(logging.Options{
		Path:       util.ExpandHome(cfg.Log.Path),
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		Console:    args.Verbose && cmd != CmdTUI,
	})
	if err != nil {
		// A read-only home should not stop the chat.
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		logger = logging.Nop()
	}

	store, err := storage.Open(cfg.Storage.Backend, util.ExpandHome(cfg.Storage.Path))
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	serverURL := cfg.Server.URL
	if args.ServerURL != "" {
		serverURL = args.ServerURL
	}
	client := lightrag.NewClient(lightrag.Config{
		BaseURL: serverURL,
		APIKey:  cfg.Server.APIKey,
		Token:   cfg.Server.Token,
		Timeout: cfg.Timeout(),
		Logger:  logger,
	})

	// --mode applies to this run only and is never written back.
	var modes *querymode.Selector
	if args.Mode != "" {
		mode, err := querymode.Parse(args.Mode)
		if err != nil {
			store.Close()
			return nil, err
		}
		modes = querymode.NewSelector(mode, nil)
	} else {
		initial, _ := querymode.Parse(cfg.Query.Mode)
		modes = querymode.NewSelector(initial, persistMode)
	}

	env := &Env{
		Config:  cfg,
		Client:  client,
		Store:   store,
		Modes:   modes,
		Printer: i18n.New(cfg.UI.Language),
		Logger:  logger,
		Settings: func() session.Settings {
			return SessionSettings(config.Global(), args.NoStream)
		},
		In:          os.Stdin,
		Out:         os.Stdout,
		Err:         os.Stderr,
		HistoryFile: filepath.Join(util.DataDir(), "chat_history"),
		Now:         time.Now,
	}

	if cmd != CmdTUI && ShouldRender(args) {
		theme := styles.NewTheme(cfg.UI.Theme)
		r, err := render.New(render.Options{
			Width: GetTerminalWidth() - 2,
			Style: theme.MarkdownStyle(),
		})
		if err != nil {
			logger.Warn("markdown renderer unavailable", zap.Error(err))
		} else {
			env.Renderer = r
		}
	}

	return env, nil
}
