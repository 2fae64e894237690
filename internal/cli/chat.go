// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode chat for terminals where the full-screen view is not
// wanted.
//
// Interactive Commands:
//   /help, /h           Show available commands
//   /mode [name]        Show or switch the query mode
//   /clear, /c          Clear the conversation
//   /history            Reprint the conversation
//   /quit, /q           Exit chat
//   Ctrl+C              Cancel the current answer
//   Ctrl+D              Exit chat

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"

	"github.com/peterh/liner"

	"github.com/jeranaias/sladenchat-tui/internal/i18n"
	"github.com/jeranaias/sladenchat-tui/internal/querymode"
	"github.com/jeranaias/sladenchat-tui/internal/session"
	"github.com/jeranaias/sladenchat-tui/internal/ui/styles"
)

// =============================================================================
// INPUT
// =============================================================================

// LineReader reads one line of chat input.
type LineReader interface {
	ReadInput(prompt string) (string, error)
	Close()
}

// ChatCLI provides input history and line editing for line-mode chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI; historyFile may be empty.
func NewChatCLI(historyFile string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completeSlash)

	c := &ChatCLI{line: line, historyFile: historyFile}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if c.historyFile == "" {
		return
	}
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory writes input history to file, owner-readable only.
func (c *ChatCLI) SaveHistory() {
	if c.historyFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

var slashCommands = []string{"/help", "/mode", "/clear", "/history", "/quit"}

// completeSlash completes slash commands and, after "/mode ", mode names.
func completeSlash(line string) []string {
	var out []string
	if rest, ok := strings.CutPrefix(line, "/mode "); ok {
		for _, name := range querymode.Names() {
			if strings.HasPrefix(name, rest) {
				out = append(out, "/mode "+name)
			}
		}
		return out
	}
	for _, cmd := range slashCommands {
		if strings.HasPrefix(cmd, line) {
			out = append(out, cmd)
		}
	}
	return out
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat handles the "chat" command.
func HandleChat(ctx context.Context, env *Env, args Args) error {
	ctrl, err := env.NewController()
	if err != nil {
		return err
	}
	defer ctrl.Close()

	reader := NewChatCLI(env.HistoryFile)
	defer reader.Close()

	r := &repl{env: env, ctrl: ctrl, in: reader}

	// Ctrl+C while an answer streams cancels that answer only. At the prompt
	// liner sees it first and aborts the read.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			if r.cancelTurn() {
				fmt.Fprintln(env.Err, "\n"+WarningStyle.Render("[Cancelled]"))
			}
		}
	}()

	return r.run(ctx)
}

// repl is the read-answer loop, separated from the terminal for tests.
type repl struct {
	env  *Env
	ctrl *session.Controller
	in   LineReader

	mu     sync.Mutex
	cancel context.CancelFunc
}

func (r *repl) run(ctx context.Context) error {
	r.printWelcome()

	for {
		prompt := PromptStyle.Render(r.ctrl.CurrentMode().String() + "> ")
		input, err := r.in.ReadInput(prompt)
		if err != nil {
			// Ctrl+C at the prompt, Ctrl+D or a closed stdin all end the chat.
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.env.Out)
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			cont, err := r.handleSlash(ctx, input)
			if err != nil {
				fmt.Fprintf(r.env.Err, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			}
			if !cont {
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil
		}

		if err := r.ask(ctx, input); err != nil {
			fmt.Fprintf(r.env.Err, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		}
	}
}

// ask runs one turn under a cancellable context.
func (r *repl) ask(ctx context.Context, input string) error {
	turnCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()
		cancel()
	}()

	return printTurn(turnCtx, r.env, r.ctrl, input)
}

func (r *repl) cancelTurn() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return false
	}
	r.cancel()
	r.cancel = nil
	return true
}

// handleSlash runs a slash command. It returns false when the chat should end.
func (r *repl) handleSlash(ctx context.Context, input string) (bool, error) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch cmd {
	case "/help", "/h", "/?":
		r.printHelp()
	case "/quit", "/q", "/exit":
		return false, nil
	case "/clear", "/c":
		if err := r.ctrl.ClearHistory(ctx); err != nil {
			return true, err
		}
		fmt.Fprintln(r.env.Out, SuccessStyle.Render(r.env.Printer.T(i18n.KeyCleared)))
	case "/mode", "/m":
		if arg == "" {
			printModes(r.env.Out, r.ctrl.CurrentMode())
			return true, nil
		}
		if err := r.ctrl.SelectMode(arg); err != nil {
			return true, err
		}
		fmt.Fprintln(r.env.Out, SuccessStyle.Render(r.env.Printer.T(i18n.KeyModeChanged, r.ctrl.CurrentMode().Label())))
	case "/history":
		printTranscript(r.env.Out, r.ctrl.Snapshot(), r.env.Renderer)
	default:
		return true, fmt.Errorf("unknown command %s (try /help)", cmd)
	}
	return true, nil
}

func (r *repl) printWelcome() {
	fmt.Fprintln(r.env.Out, TitleStyle.Render(styles.Title)+" "+DimStyle.Render(r.env.Client.BaseURL()))
	if n := len(r.ctrl.Snapshot()); n > 0 {
		fmt.Fprintln(r.env.Out, DimStyle.Render(fmt.Sprintf("%d messages restored. /history shows them, /clear starts over.", n)))
	}
	fmt.Fprintln(r.env.Out, DimStyle.Render("Type /help for commands, Ctrl+D to exit."))
}

func (r *repl) printHelp() {
	lines := [][2]string{
		{"/mode [name]", "Show or switch the query mode"},
		{"/clear", "Clear the conversation"},
		{"/history", "Reprint the conversation"},
		{"/help", "Show this help"},
		{"/quit", "Exit chat"},
	}
	for _, l := range lines {
		fmt.Fprintln(r.env.Out, RenderKV(l[0], l[1]))
	}
}
