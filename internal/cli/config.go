// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Read and change settings by dotted key.
//
// Examples:
//   sladen config show
//   sladen config get query.mode
//   sladen config set query.history_turns 5
//   sladen config set query.hl_keywords "graph,retrieval"
//   sladen config path

package cli

import (
	"fmt"
	"strings"

	"github.com/jeranaias/sladenchat-tui/internal/config"
)

const configUsage = "sladen config [show | get KEY | set KEY VALUE | path | keys]"

// secretKeys are masked by show and get.
var secretKeys = map[string]bool{
	"server.api_key": true,
	"server.token":   true,
}

// HandleConfig handles the "config" command.
func HandleConfig(env *Env, args Args) error {
	parser, err := NewArgParser(args.Raw)
	if err != nil {
		return usageErr(configUsage, "%v", err)
	}
	cfg := config.Global()

	switch parser.Subcommand() {
	case "", "show":
		return OutputJSON(env.Out, args.JSON, "config", func() (interface{}, error) {
			values := configValues(cfg)
			if !args.JSON {
				fmt.Fprintln(env.Out, TitleStyle.Render("Configuration")+" "+DimStyle.Render(cfg.Path()))
				for _, key := range config.Keys() {
					fmt.Fprintln(env.Out, RenderKV(key, fmt.Sprint(values[key])))
				}
			}
			return values, nil
		})

	case "get":
		key := parser.Positional(1)
		if key == "" {
			return usageErr(configUsage, "config get needs a key")
		}
		return OutputJSON(env.Out, args.JSON, "config", func() (interface{}, error) {
			value, err := cfg.Get(key)
			if err != nil {
				return nil, err
			}
			value = maskSecret(key, value)
			if !args.JSON {
				fmt.Fprintln(env.Out, formatValue(value))
			}
			return map[string]interface{}{key: value}, nil
		})

	case "set":
		key := parser.Positional(1)
		if key == "" || parser.PositionalCount() < 3 {
			return usageErr(configUsage, "config set needs a key and a value")
		}
		value := parser.Rest(2)
		err := config.Update(func(c *config.Config) error {
			return c.Set(key, value)
		})
		if err != nil {
			return &CommandError{Command: "config", Action: "set", Reason: key, Err: err}
		}
		fmt.Fprintln(env.Out, SuccessStyle.Render("Saved ")+key)
		return nil

	case "path":
		fmt.Fprintln(env.Out, cfg.Path())
		return nil

	case "keys":
		for _, key := range config.Keys() {
			fmt.Fprintln(env.Out, key)
		}
		return nil

	default:
		return usageErr(configUsage, "unknown config subcommand %q", parser.Subcommand())
	}
}

// configValues returns every key with its value, secrets masked.
func configValues(cfg *config.Config) map[string]interface{} {
	out := make(map[string]interface{})
	for _, key := range config.Keys() {
		value, err := cfg.Get(key)
		if err != nil {
			continue
		}
		out[key] = maskSecret(key, value)
	}
	return out
}

func maskSecret(key string, value interface{}) interface{} {
	s, ok := value.(string)
	if !ok || !secretKeys[key] || s == "" {
		return value
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****"
}

func formatValue(value interface{}) string {
	if list, ok := value.([]string); ok {
		return strings.Join(list, ",")
	}
	return fmt.Sprint(value)
}
