// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and persistence for sladen.
//
// Settings live in a single TOML file (default ~/.sladen/config.toml) that
// also acts as the user's settings store: the current query mode, history
// depth, streaming flag and theme are written back here when changed.
//
// Precedence, lowest first:
//   - Built-in defaults
//   - The TOML file
//   - A .env file in the working directory (never overrides real env vars)
//   - Environment variables
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	cfg.Query.Mode = "hybrid"
//	err = cfg.Save()
//
// Dotted keys address individual settings for the config command:
//
//	v, _ := cfg.Get("query.history_turns")
//	_ = cfg.Set("ui.theme", "light")
package config
