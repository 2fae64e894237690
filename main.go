// sladen - a terminal chat client for LightRAG.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/jeranaias/sladenchat-tui/internal/cli"
	"github.com/jeranaias/sladenchat-tui/internal/querymode"
	"github.com/jeranaias/sladenchat-tui/internal/render"
	"github.com/jeranaias/sladenchat-tui/internal/ui/chat"
	"github.com/jeranaias/sladenchat-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	if !cli.NeedsEnv(cmd) {
		if cmd == cli.CmdVersion {
			cli.PrintVersion(os.Stdout)
		} else {
			cli.PrintUsage(os.Stdout, querymode.Names())
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	env, err := cli.Bootstrap(cmd, args)
	if err != nil {
		exit(err)
	}

	if cmd == cli.CmdTUI {
		err = runTUI(ctx, env)
	} else {
		err = cli.Run(ctx, cmd, args, env)
	}
	env.Close()
	if err != nil {
		exit(err)
	}
}

// runTUI starts the full-screen chat.
func runTUI(ctx context.Context, env *cli.Env) error {
	if !cli.IsTTY() || !cli.IsStdoutTTY() {
		return fmt.Errorf("the chat view needs a terminal; try \"sladen chat\" or \"sladen ask\"")
	}

	theme := styles.NewTheme(env.Config.UI.Theme)
	renderer, err := render.New(render.Options{
		Width: env.Config.UI.WordWrap,
		Style: theme.MarkdownStyle(),
	})
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	ctrl, err := env.NewController()
	if err != nil {
		return err
	}
	defer ctrl.Close()

	env.Logger.Info("starting chat view",
		zap.String("server", env.Client.BaseURL()),
		zap.String("mode", ctrl.CurrentMode().String()))

	return chat.Run(ctx, chat.RunOptions{
		Options: chat.Options{
			Status:          env.Client,
			Theme:           theme,
			Renderer:        renderer,
			Printer:         env.Printer,
			Logger:          env.Logger,
			HealthInterval:  env.Config.HealthInterval(),
			ShowSuggestions: env.Config.UI.ShowSuggestions,
			Clipboard:       clipboard.WriteAll,
		},
		Controller: ctrl,
		Modes:      env.Modes,
		ConfigPath: env.Config.Path(),
	})
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", cli.ErrorStyle.Render("Error:"), err)
	os.Exit(cli.ExitCode(err))
}
