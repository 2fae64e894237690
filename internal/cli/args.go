// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Subcommand argument parsing.
//
// Global flags (--json, --mode, ...) are removed by ParseArgs before a
// handler sees its arguments. What is left is parsed here against the flags
// the subcommands actually take, so a switch never swallows the positional
// after it and a typo is reported instead of ignored.

package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// FLAG TABLE
// =============================================================================

// flagSpec describes one subcommand flag.
type flagSpec struct {
	long    string
	short   string
	noValue bool
}

var subcommandFlags = []flagSpec{
	{long: "last", short: "n"},
	{long: "format", short: "f"},
	{long: "dir", short: "d"},
	{long: "yes", short: "y", noValue: true},
	{long: "stdout", noValue: true},
	{long: "errors", noValue: true},
	{long: "password-stdin", noValue: true},
}

func lookupFlag(name string) (flagSpec, bool) {
	for _, f := range subcommandFlags {
		if name == f.long || (f.short != "" && name == f.short) {
			return f, true
		}
	}
	return flagSpec{}, false
}

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser holds one subcommand's parsed arguments. Flags are stored under
// their long name, so "-n 2" and "--last=2" read the same.
//
//	p, err := NewArgParser([]string{"export", "-f", "json", "--stdout"})
//	p.Subcommand()                  // "export"
//	p.FlagOrDefault("format", "md") // "json"
//	p.Switch("stdout")              // true
type ArgParser struct {
	values     map[string]string
	switches   map[string]bool
	positional []string
}

// NewArgParser parses raw. Everything after a bare "--" is positional, which
// lets a config value start with a dash.
func NewArgParser(raw []string) (*ArgParser, error) {
	p := &ArgParser{
		values:   make(map[string]string),
		switches: make(map[string]bool),
	}

	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		if arg == "--" {
			p.positional = append(p.positional, raw[i+1:]...)
			break
		}
		if len(arg) < 2 || arg[0] != '-' {
			p.positional = append(p.positional, arg)
			continue
		}

		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		spec, ok := lookupFlag(name)
		if !ok {
			return nil, fmt.Errorf("unknown flag %s", arg)
		}

		if spec.noValue {
			on := true
			if hasValue {
				b, err := ParseBoolString(value)
				if err != nil {
					return nil, fmt.Errorf("--%s: %w", spec.long, err)
				}
				on = b
			}
			p.switches[spec.long] = on
			continue
		}

		if !hasValue {
			if i+1 >= len(raw) {
				return nil, fmt.Errorf("--%s needs a value", spec.long)
			}
			i++
			value = raw[i]
		}
		p.values[spec.long] = value
	}

	return p, nil
}

// Subcommand returns the first positional argument, or "".
func (p *ArgParser) Subcommand() string {
	return p.Positional(0)
}

// Positional returns the positional argument at index, or "".
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// PositionalCount returns the number of positional arguments.
func (p *ArgParser) PositionalCount() int {
	return len(p.positional)
}

// Rest joins the positional arguments from index on with single spaces.
func (p *ArgParser) Rest(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return strings.Join(p.positional[index:], " ")
}

// FlagOrDefault returns the flag's value, or def when it was not given.
func (p *ArgParser) FlagOrDefault(long, def string) string {
	if v, ok := p.values[long]; ok {
		return v
	}
	return def
}

// Switch reports whether a switch was turned on.
func (p *ArgParser) Switch(long string) bool {
	return p.switches[long]
}

// PositiveInt returns the flag as an integer above zero, or def when the
// flag was not given.
func (p *ArgParser) PositiveInt(long string, def int) (int, error) {
	raw, ok := p.values[long]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("--%s must be a whole number, got %q", long, raw)
	}
	if n <= 0 {
		return 0, fmt.Errorf("--%s must be positive, got %d", long, n)
	}
	return n, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// ParseBoolString accepts true/false, yes/no, y/n, 1/0 and on/off in any case.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "on":
		return true, nil
	case "false", "no", "n", "0", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value: %s", strings.TrimSpace(s))
	}
}
