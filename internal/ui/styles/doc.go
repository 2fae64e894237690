// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the Sladen Chat TUI.
//
// # Colors
//
// All colors are lipgloss.AdaptiveColor values. Which half of each pair is
// used depends on the background setting, which NewTheme fixes from the
// configured theme:
//
//   - "dark" and "light" force the palette
//   - "system" asks the terminal (termenv background detection)
//
// # Theme
//
// Theme bundles the lipgloss styles every view uses: header and tabs, message
// bubbles, input, status bar, mode picker and suggestion list.
//
//	theme := styles.NewTheme("system")
//	fmt.Println(theme.RenderTitle())
package styles
