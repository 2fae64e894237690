// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - Inspect, clear and export the saved conversation.
//
// Examples:
//   sladen history                     Print the conversation
//   sladen history show --last 2       Only the last two turns
//   sladen history clear -y            Clear without asking
//   sladen history export --format json --dir ./out
//   sladen history export --stdout     Markdown to stdout

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/jeranaias/sladenchat-tui/internal/export"
	"github.com/jeranaias/sladenchat-tui/internal/model"
	"github.com/jeranaias/sladenchat-tui/internal/render"
	"github.com/jeranaias/sladenchat-tui/internal/storage"
)

const historyUsage = "sladen history [show [-n N] | clear [-y] | export [-f md|json] [-d DIR] [--errors] [--stdout]]"

// HandleHistory handles the "history" command.
func HandleHistory(ctx context.Context, env *Env, args Args) error {
	parser, err := NewArgParser(args.Raw)
	if err != nil {
		return usageErr(historyUsage, "%v", err)
	}

	switch parser.Subcommand() {
	case "", "show", "list":
		return historyShow(ctx, env, args, parser)
	case "clear":
		return historyClear(ctx, env, parser)
	case "export":
		return historyExport(ctx, env, args, parser)
	default:
		return usageErr(historyUsage, "unknown history subcommand %q", parser.Subcommand())
	}
}

func historyShow(ctx context.Context, env *Env, args Args, parser *ArgParser) error {
	rec, err := env.Store.Load(ctx)
	if err != nil {
		return &CommandError{Command: "history", Action: "show", Reason: "cannot read conversation", Err: err}
	}

	turns, err := parser.PositiveInt("last", 0)
	if err != nil {
		return usageErr(historyUsage, "%v", err)
	}
	messages := rec.Messages
	if turns > 0 {
		messages = lastTurns(messages, turns)
	}

	if args.JSON {
		return NewJSONResponse("history", &storage.Record{
			Generation: rec.Generation,
			Messages:   messages,
			UpdatedAt:  rec.UpdatedAt,
		}).Print(env.Out)
	}

	if len(messages) == 0 {
		fmt.Fprintln(env.Out, DimStyle.Render("No conversation yet."))
		return nil
	}
	printTranscript(env.Out, messages, env.Renderer)
	return nil
}

// lastTurns keeps the last n user/assistant pairs.
func lastTurns(messages []model.Message, n int) []model.Message {
	if keep := 2 * n; len(messages) > keep {
		return messages[len(messages)-keep:]
	}
	return messages
}

func historyClear(ctx context.Context, env *Env, parser *ArgParser) error {
	rec, err := env.Store.Load(ctx)
	if err != nil {
		return &CommandError{Command: "history", Action: "clear", Reason: "cannot read conversation", Err: err}
	}
	if len(rec.Messages) == 0 {
		fmt.Fprintln(env.Out, DimStyle.Render("Nothing to clear."))
		return nil
	}

	if !parser.Switch("yes") && IsTTY() {
		if !confirm(env.In, env.Out, fmt.Sprintf("Clear %d messages?", len(rec.Messages))) {
			fmt.Fprintln(env.Out, DimStyle.Render("Cancelled."))
			return nil
		}
	}

	// Clearing through the controller bumps the generation, so a chat
	// running in another terminal cannot write the old turns back.
	ctrl, err := env.NewController()
	if err != nil {
		return err
	}
	defer ctrl.Close()
	if err := ctrl.ClearHistory(ctx); err != nil {
		return &CommandError{Command: "history", Action: "clear", Reason: "cannot save", Err: err}
	}
	fmt.Fprintln(env.Out, SuccessStyle.Render("Conversation cleared."))
	return nil
}

func historyExport(ctx context.Context, env *Env, args Args, parser *ArgParser) error {
	rec, err := env.Store.Load(ctx)
	if err != nil {
		return &CommandError{Command: "history", Action: "export", Reason: "cannot read conversation", Err: err}
	}

	opts := export.DefaultOptions()
	opts.IncludeErrors = parser.Switch("errors")
	exporter, err := export.ForFormat(parser.FlagOrDefault("format", "md"), opts)
	if err != nil {
		return usageErr(historyUsage, "%v", err)
	}

	if parser.Switch("stdout") {
		data, err := exporter.Export(rec)
		if err != nil {
			return &CommandError{Command: "history", Action: "export", Reason: "cannot encode", Err: err}
		}
		_, err = env.Out.Write(data)
		return err
	}

	path, err := export.ToFile(rec, exporter, parser.FlagOrDefault("dir", "."))
	if err != nil {
		return &CommandError{Command: "history", Action: "export", Reason: "cannot write file", Err: err}
	}

	if args.JSON {
		return NewJSONResponse("history", map[string]interface{}{
			"path":     path,
			"messages": len(rec.Messages),
		}).Print(env.Out)
	}
	fmt.Fprintln(env.Out, SuccessStyle.Render("Exported to ")+path)
	return nil
}

// printTranscript writes the conversation. Assistant answers go through r
// when it is set.
func printTranscript(w io.Writer, messages []model.Message, r *render.Renderer) {
	for _, msg := range messages {
		switch {
		case msg.IsUser():
			fmt.Fprintln(w, PromptStyle.Render(msg.Role.DisplayName()+":")+" "+msg.Content)
		case msg.IsError:
			fmt.Fprintln(w, ErrorStyle.Render(msg.Role.DisplayName()+" [X]:"))
			fmt.Fprintln(w, msg.Content)
		default:
			fmt.Fprintln(w, TitleStyle.Render(msg.Role.DisplayName()+":"))
			if r != nil {
				fmt.Fprint(w, r.Render(msg.Content))
			} else {
				fmt.Fprintln(w, msg.Content)
			}
		}
		fmt.Fprintln(w)
	}
}

// confirm asks a yes/no question on out and reads the answer from in.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	ok, err := ParseBoolString(line)
	return err == nil && ok
}
