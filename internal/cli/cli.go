// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command parsing and usage text for sladen.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdAsk
	CmdMode
	CmdHistory
	CmdConfig
	CmdStatus
	CmdLogin
	CmdLogout
	CmdVersion
	CmdHelp
)

// String returns the command name as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdChat:
		return "chat"
	case CmdAsk:
		return "ask"
	case CmdMode:
		return "mode"
	case CmdHistory:
		return "history"
	case CmdConfig:
		return "config"
	case CmdStatus:
		return "status"
	case CmdLogin:
		return "login"
	case CmdLogout:
		return "logout"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds the parsed command line.
type Args struct {
	// Raw holds the arguments after the command name, global flags removed.
	Raw []string

	// Global flags.
	ConfigPath string // --config PATH
	ServerURL  string // --url URL
	Mode       string // --mode NAME, for this run only
	JSON       bool   // --json
	Verbose    bool   // -v, --verbose
	Plain      bool   // --plain, never render markdown
	NoStream   bool   // --no-stream

	// Query is the joined question for ask.
	Query string
}

const usageText = `sladen - terminal chat for a LightRAG server

Usage:
  sladen                       Start the full-screen chat (default)
  sladen tui                   Same as above
  sladen chat                  Line-mode chat
  sladen ask "question"        Ask one question and print the answer
  sladen mode [name]           Show or set the query mode
  sladen history [show|clear|export]
                               Inspect, clear or export the conversation
  sladen config [show|get|set|path|keys]
                               Read or change settings
  sladen status, s             Backend health and login state
  sladen login [username]      Log in and store the access token
  sladen logout                Forget the stored token
  sladen version               Print version information
  sladen help                  Show this help

Global flags:
  --config PATH                Config file (default ~/.sladen/config.toml)
  --url URL                    LightRAG server address
  --mode NAME                  Query mode for this run only
  --no-stream                  Wait for the full answer instead of streaming
  --plain                      Print answers without markdown rendering
  --json                       JSON output where supported
  -v, --verbose                Mirror log entries to stderr

Query modes: %s

Version: %s
`

// PrintUsage writes the help text to w.
func PrintUsage(w io.Writer, modes []string) {
	fmt.Fprintf(w, usageText, strings.Join(modes, ", "), Version)
}

// PrintVersion writes version details to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "sladen %s (commit %s, built %s, %s)\n", Version, GitCommit, BuildDate, runtime.Version())
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses argv (without the program name).
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	first := remaining[0]
	cmd := strings.ToLower(first)
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs
	case "chat", "repl":
		return CmdChat, parsedArgs
	case "ask", "q":
		parsedArgs.Query = strings.TrimSpace(strings.Join(remaining, " "))
		return CmdAsk, parsedArgs
	case "mode", "modes":
		return CmdMode, parsedArgs
	case "history", "h":
		return CmdHistory, parsedArgs
	case "config":
		return CmdConfig, parsedArgs
	case "status", "s":
		return CmdStatus, parsedArgs
	case "login":
		return CmdLogin, parsedArgs
	case "logout":
		return CmdLogout, parsedArgs
	case "version", "--version":
		return CmdVersion, parsedArgs
	case "help", "-h", "--help":
		return CmdHelp, parsedArgs
	default:
		// A bare question: sladen "what is lightrag"
		parsedArgs.Raw = append([]string{first}, remaining...)
		parsedArgs.Query = strings.TrimSpace(strings.Join(parsedArgs.Raw, " "))
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
// Flags after the command name are recognized too, so
// "sladen ask --no-stream why" works.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "--json":
			parsedArgs.JSON = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--plain":
			parsedArgs.Plain = true
		case "--no-stream":
			parsedArgs.NoStream = true
		case "--config", "--url", "--mode":
			if i+1 < len(args) {
				i++
				setValueFlag(&parsedArgs, arg, args[i])
			}
		default:
			if name, value, ok := strings.Cut(arg, "="); ok && isValueFlag(name) {
				setValueFlag(&parsedArgs, name, value)
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

func isValueFlag(name string) bool {
	return name == "--config" || name == "--url" || name == "--mode"
}

func setValueFlag(a *Args, name, value string) {
	switch name {
	case "--config":
		a.ConfigPath = value
	case "--url":
		a.ServerURL = value
	case "--mode":
		a.Mode = value
	}
}
