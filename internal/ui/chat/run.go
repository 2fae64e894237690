// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/sladenchat-tui/internal/config"
	"github.com/jeranaias/sladenchat-tui/internal/logging"
	"github.com/jeranaias/sladenchat-tui/internal/querymode"
	"github.com/jeranaias/sladenchat-tui/internal/session"
)

// RunOptions adds what Run needs beyond the model's own options.
type RunOptions struct {
	Options

	// Controller delivers events to the view. It is also used as the
	// Session when Options.Session is nil.
	Controller *session.Controller

	// Modes is synced when the config file's query mode changes.
	Modes *querymode.Selector

	// ConfigPath is watched for edits; empty disables watching.
	ConfigPath string
}

// Run starts the full-screen chat and blocks until the user quits.
func Run(ctx context.Context, opts RunOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := logging.OrNop(opts.Logger)
	if opts.Session == nil {
		opts.Session = opts.Controller
	}

	m := New(ctx, opts.Options)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if opts.Controller != nil {
		unsubscribe := opts.Controller.Subscribe(func(ev session.Event) {
			p.Send(ControllerEventMsg{Event: ev})
		})
		defer unsubscribe()
	}

	if opts.ConfigPath != "" {
		go func() {
			err := config.Watch(ctx, opts.ConfigPath,
				func(cfg *config.Config) {
					if opts.Modes != nil {
						if mode, err := querymode.Parse(cfg.Query.Mode); err == nil {
							opts.Modes.Sync(mode)
						}
					}
					config.SetGlobal(cfg)
					p.Send(ConfigChangedMsg{Config: cfg})
				},
				func(err error) {
					logger.Warn("config reload failed", zap.Error(err))
				})
			if err != nil {
				logger.Warn("config watcher stopped", zap.Error(err))
			}
		}()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
