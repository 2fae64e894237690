// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// mode.go - Show or set the query mode.
//
// Examples:
//   sladen mode            List modes, marking the current one
//   sladen mode hybrid     Use hybrid retrieval from now on

package cli

import (
	"fmt"
	"io"

	"github.com/jeranaias/sladenchat-tui/internal/querymode"
)

const modeUsage = "sladen mode [name]"

// ModeInfo is one entry of the --json mode listing.
type ModeInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Current     bool   `json:"current"`
}

// HandleMode handles the "mode" command.
func HandleMode(env *Env, args Args) error {
	parser, err := NewArgParser(args.Raw)
	if err != nil {
		return usageErr(modeUsage, "%v", err)
	}

	return OutputJSON(env.Out, args.JSON, "mode", func() (interface{}, error) {
		if name := parser.Subcommand(); name != "" {
			if err := env.Modes.Select(name); err != nil {
				return nil, err
			}
			if !args.JSON {
				fmt.Fprintln(env.Out, SuccessStyle.Render(fmt.Sprintf("Query mode set to %s", env.Modes.Current())))
			}
		} else if !args.JSON {
			printModes(env.Out, env.Modes.Current())
		}
		return listModes(env.Modes.Current()), nil
	})
}

func listModes(current querymode.Mode) []ModeInfo {
	all := querymode.All()
	out := make([]ModeInfo, len(all))
	for i, m := range all {
		out[i] = ModeInfo{Name: m.String(), Description: m.Description(), Current: m == current}
	}
	return out
}

// printModes lists every mode with its description, marking current.
func printModes(w io.Writer, current querymode.Mode) {
	for _, m := range querymode.All() {
		marker := "  "
		name := m.String()
		if m == current {
			marker = "* "
			name = SuccessStyle.Render(name)
		}
		fmt.Fprintf(w, "%s%s %s\n", marker, LabelStyle.Render(name), DimStyle.Render(m.Description()))
	}
}
