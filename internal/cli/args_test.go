// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"
	"testing"
)

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"show"},
			wantSub: "show",
		},
		{
			name:    "long flag with value",
			args:    []string{"show", "--last", "2"},
			wantSub: "show",
			validate: func(t *testing.T, p *ArgParser) {
				if n, err := p.PositiveInt("last", 0); err != nil || n != 2 {
					t.Errorf("PositiveInt(last) = %d, %v; want 2", n, err)
				}
			},
		},
		{
			name:    "short flag maps to long name",
			args:    []string{"show", "-n", "3"},
			wantSub: "show",
			validate: func(t *testing.T, p *ArgParser) {
				if n, _ := p.PositiveInt("last", 0); n != 3 {
					t.Errorf("-n 3 read as %d", n)
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"export", "--format=json"},
			wantSub: "export",
			validate: func(t *testing.T, p *ArgParser) {
				if got := p.FlagOrDefault("format", "md"); got != "json" {
					t.Errorf("format = %q, want json", got)
				}
			},
		},
		{
			name:    "switch does not take the next positional",
			args:    []string{"--password-stdin", "admin"},
			wantSub: "admin",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.Switch("password-stdin") {
					t.Error("password-stdin should be on")
				}
			},
		},
		{
			name:    "explicit switch value",
			args:    []string{"export", "--errors=false", "--stdout=yes"},
			wantSub: "export",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Switch("errors") {
					t.Error("errors should be off")
				}
				if !p.Switch("stdout") {
					t.Error("stdout should be on")
				}
			},
		},
		{
			name:    "rest joins positionals",
			args:    []string{"set", "query.hl_keywords", "graph", "rag"},
			wantSub: "set",
			validate: func(t *testing.T, p *ArgParser) {
				if p.PositionalCount() != 4 {
					t.Errorf("PositionalCount() = %d, want 4", p.PositionalCount())
				}
				if got := p.Rest(2); got != "graph rag" {
					t.Errorf("Rest(2) = %q, want %q", got, "graph rag")
				}
			},
		},
		{
			name:    "double dash ends flags",
			args:    []string{"set", "query.user_prompt", "--", "-terse", "--yes"},
			wantSub: "set",
			validate: func(t *testing.T, p *ArgParser) {
				if got := p.Rest(2); got != "-terse --yes" {
					t.Errorf("Rest(2) = %q", got)
				}
				if p.Switch("yes") {
					t.Error("--yes after -- is positional")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, err := NewArgParser(tt.args)
			if err != nil {
				t.Fatalf("NewArgParser(%v) error: %v", tt.args, err)
			}
			if parser.Subcommand() != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", parser.Subcommand(), tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, parser)
			}
		})
	}
}

func TestArgParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"show", "--lats", "2"}, "unknown flag --lats"},
		{"missing value", []string{"export", "--format"}, "--format needs a value"},
		{"bad switch value", []string{"clear", "--yes=maybe"}, "--yes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewArgParser(tt.args)
			if err == nil {
				t.Fatalf("NewArgParser(%v) should fail", tt.args)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestArgParser_PositiveInt(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    int
		wantErr bool
	}{
		{"absent uses default", []string{"show"}, 5, false},
		{"valid", []string{"show", "--last", "4"}, 4, false},
		{"zero", []string{"show", "--last", "0"}, 0, true},
		{"negative", []string{"show", "--last=-2"}, 0, true},
		{"not a number", []string{"show", "--last", "abc"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewArgParser(tt.args)
			if err != nil {
				t.Fatalf("NewArgParser: %v", err)
			}
			got, err := p.PositiveInt("last", 5)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PositiveInt error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("PositiveInt = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestArgParser_EmptyArgs(t *testing.T) {
	parser, err := NewArgParser(nil)
	if err != nil {
		t.Fatal(err)
	}
	if parser.Subcommand() != "" {
		t.Errorf("Subcommand() = %q, want empty", parser.Subcommand())
	}
	if parser.Positional(-1) != "" || parser.Rest(3) != "" {
		t.Error("out of range lookups should be empty")
	}
	if parser.FlagOrDefault("dir", ".") != "." {
		t.Error("FlagOrDefault should fall back")
	}
}

func TestParseBoolString(t *testing.T) {
	for _, in := range []string{"true", "YES", "y", "1", "on", " y\n"} {
		if v, err := ParseBoolString(in); err != nil || !v {
			t.Errorf("ParseBoolString(%q) = %v, %v; want true", in, v, err)
		}
	}
	for _, in := range []string{"false", "no", "N", "0", "off"} {
		if v, err := ParseBoolString(in); err != nil || v {
			t.Errorf("ParseBoolString(%q) = %v, %v; want false", in, v, err)
		}
	}
	if _, err := ParseBoolString("maybe"); err == nil {
		t.Error("ParseBoolString(maybe) should fail")
	}
}

// =============================================================================
// COMMAND PARSING TESTS (cli.go)
// =============================================================================

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name     string
		argv     []string
		wantCmd  Command
		validate func(*testing.T, Args)
	}{
		{
			name:    "no args starts the TUI",
			argv:    nil,
			wantCmd: CmdTUI,
		},
		{
			name:    "ask joins the question",
			argv:    []string{"ask", "what", "is", "lightrag"},
			wantCmd: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if a.Query != "what is lightrag" {
					t.Errorf("Query = %q", a.Query)
				}
			},
		},
		{
			name:    "bare question keeps its case",
			argv:    []string{"Who", "wrote", "it?"},
			wantCmd: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if a.Query != "Who wrote it?" {
					t.Errorf("Query = %q", a.Query)
				}
			},
		},
		{
			name:    "global flags anywhere",
			argv:    []string{"--mode", "local", "ask", "--no-stream", "hi", "--plain"},
			wantCmd: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if a.Mode != "local" || !a.NoStream || !a.Plain {
					t.Errorf("flags not parsed: %+v", a)
				}
				if a.Query != "hi" {
					t.Errorf("Query = %q, want hi", a.Query)
				}
			},
		},
		{
			name:    "value flags with equals",
			argv:    []string{"--config=/tmp/c.toml", "--url=http://rag:9621", "status"},
			wantCmd: CmdStatus,
			validate: func(t *testing.T, a Args) {
				if a.ConfigPath != "/tmp/c.toml" || a.ServerURL != "http://rag:9621" {
					t.Errorf("flags not parsed: %+v", a)
				}
			},
		},
		{
			name:    "subcommand args are kept raw",
			argv:    []string{"history", "export", "--format", "json", "--json"},
			wantCmd: CmdHistory,
			validate: func(t *testing.T, a Args) {
				if strings.Join(a.Raw, " ") != "export --format json" {
					t.Errorf("Raw = %v", a.Raw)
				}
				if !a.JSON {
					t.Error("JSON should be set")
				}
			},
		},
		{name: "status alias", argv: []string{"s"}, wantCmd: CmdStatus},
		{name: "chat", argv: []string{"chat"}, wantCmd: CmdChat},
		{name: "mode", argv: []string{"MODE", "hybrid"}, wantCmd: CmdMode},
		{name: "config", argv: []string{"config", "get", "query.mode"}, wantCmd: CmdConfig},
		{name: "login", argv: []string{"login", "admin"}, wantCmd: CmdLogin},
		{name: "logout", argv: []string{"logout"}, wantCmd: CmdLogout},
		{name: "version flag", argv: []string{"--version"}, wantCmd: CmdVersion},
		{name: "help flag", argv: []string{"-h"}, wantCmd: CmdHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseArgs(tt.argv)
			if cmd != tt.wantCmd {
				t.Errorf("command = %s, want %s", cmd, tt.wantCmd)
			}
			if tt.validate != nil {
				tt.validate(t, args)
			}
		})
	}
}

func TestNeedsEnv(t *testing.T) {
	if NeedsEnv(CmdVersion) || NeedsEnv(CmdHelp) {
		t.Error("version and help run without config")
	}
	if !NeedsEnv(CmdAsk) {
		t.Error("ask needs the env")
	}
}
