// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One question, one answer.
//
// Examples:
//   sladen ask "what are the main arguments?"
//   sladen --mode local ask who wrote the report
//   echo "summarize" | sladen ask
//
// The turn goes through the same session controller as the TUI, so it is
// added to the saved conversation and sees its recent history.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jeranaias/sladenchat-tui/internal/model"
	"github.com/jeranaias/sladenchat-tui/internal/session"
)

const askUsage = `sladen ask "question"`

// AskResult is the --json payload of ask.
type AskResult struct {
	Query   string `json:"query"`
	Mode    string `json:"mode"`
	Answer  string `json:"answer"`
	IsError bool   `json:"isError"`
}

// HandleAsk handles the "ask" command.
func HandleAsk(ctx context.Context, env *Env, args Args) error {
	query := args.Query
	if strings.TrimSpace(query) == "" && env.In != nil && !IsTTY() {
		data, err := io.ReadAll(env.In)
		if err != nil {
			return &CommandError{Command: "ask", Action: "read", Reason: "cannot read question from stdin", Err: err}
		}
		query = string(data)
	}
	if strings.TrimSpace(query) == "" {
		return usageErr(askUsage, "no question given")
	}

	ctrl, err := env.NewController()
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if args.JSON {
		reply, turnErr := runTurn(ctx, ctrl, query, nil)
		if reply.Content == "" && turnErr != nil {
			return turnErr
		}
		return NewJSONResponse("ask", AskResult{
			Query:   strings.TrimSpace(query),
			Mode:    ctrl.CurrentMode().String(),
			Answer:  reply.Content,
			IsError: reply.IsError,
		}).Print(env.Out)
	}

	return printTurn(ctx, env, ctrl, query)
}

// printTurn runs one turn and writes the answer to env.Out. Without a
// renderer the answer is streamed as it arrives; with one it is rendered
// once complete.
func printTurn(ctx context.Context, env *Env, ctrl *session.Controller, query string) error {
	var sp *streamPrinter
	if env.Renderer == nil {
		sp = &streamPrinter{w: env.Out}
	}

	reply, turnErr := runTurn(ctx, ctrl, query, sp)
	if turnErr != nil && reply.Content == "" {
		return turnErr
	}

	if sp != nil {
		sp.finish(reply.Content)
	} else {
		out := env.Renderer.Render(reply.Content)
		if reply.IsError {
			out = ErrorStyle.Render(reply.Content) + "\n"
		}
		fmt.Fprint(env.Out, out)
	}

	if reply.IsError {
		return &CommandError{Command: "ask", Action: "query", Reason: "the server did not answer", Err: turnErr}
	}
	return nil
}

// runTurn submits query and returns the final assistant message. The error
// is a rejected submit, or the backend failure recorded on the reply.
func runTurn(ctx context.Context, ctrl *session.Controller, query string, sp *streamPrinter) (model.Message, error) {
	var (
		mu      sync.Mutex
		turnErr error
	)
	unsubscribe := ctrl.Subscribe(func(ev session.Event) {
		switch ev.Kind {
		case session.EventMessagesChanged:
			if sp != nil && ctrl.Sending() {
				if msg, ok := model.LastAssistant(ctrl.Snapshot()); ok {
					sp.update(msg.Content)
				}
			}
		case session.EventTurnFinished:
			mu.Lock()
			turnErr = ev.Err
			mu.Unlock()
		}
	})
	defer unsubscribe()

	if err := ctrl.Submit(ctx, query); err != nil {
		return model.Message{}, err
	}

	reply, ok := model.LastAssistant(ctrl.Snapshot())
	if !ok {
		return model.Message{}, errors.New("no reply recorded")
	}
	mu.Lock()
	defer mu.Unlock()
	return reply, turnErr
}

// =============================================================================
// STREAM PRINTER
// =============================================================================

// streamPrinter writes the growing reply as deltas.
type streamPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	printed string
}

func (p *streamPrinter) update(content string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if strings.HasPrefix(content, p.printed) {
		fmt.Fprint(p.w, content[len(p.printed):])
		p.printed = content
	}
}

// finish writes whatever the final content adds. A failed reply whose text
// no longer extends what was printed is written on its own line.
func (p *streamPrinter) finish(content string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case strings.HasPrefix(content, p.printed):
		fmt.Fprint(p.w, content[len(p.printed):])
	case p.printed != "":
		fmt.Fprint(p.w, "\n"+content)
	default:
		fmt.Fprint(p.w, content)
	}
	p.printed = content
	if !strings.HasSuffix(content, "\n") {
		fmt.Fprintln(p.w)
	}
}
