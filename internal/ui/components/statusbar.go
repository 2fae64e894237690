// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jeranaias/sladenchat-tui/internal/querymode"
	"github.com/jeranaias/sladenchat-tui/internal/ui/styles"
	"github.com/jeranaias/sladenchat-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Shortcut is a key hint shown on the right of the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// DefaultShortcuts are the chat view's bindings.
var DefaultShortcuts = []Shortcut{
	{"enter", "send"},
	{"/", "mode"},
	{"ctrl+y", "copy"},
	{"ctrl+l", "clear"},
	{"ctrl+c", "quit"},
}

// StatusBar shows backend connectivity, the query mode and key hints.
type StatusBar struct {
	Width int

	Connected      bool
	ConnectedText  string
	Disconnected   string
	BackendMessage string
	Mode           querymode.Mode
	Notice         string
	Shortcuts      []Shortcut

	theme *styles.Theme
}

// NewStatusBar creates a status bar with the default shortcuts.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Width:         80,
		ConnectedText: "Connected",
		Disconnected:  "Disconnected",
		Mode:          querymode.DefaultMode,
		Shortcuts:     DefaultShortcuts,
		theme:         theme,
	}
}

// View renders the bar padded to Width. Shortcuts are dropped first when
// space runs out, then the backend message is truncated.
func (s *StatusBar) View() string {
	t := s.theme

	var conn string
	if s.Connected {
		conn = t.Connected.Render(styles.StatusIndicators.Connected + " " + s.ConnectedText)
	} else {
		conn = t.Disconnected.Render(styles.StatusIndicators.Disconnected + " " + s.Disconnected)
	}

	left := conn + "  " + t.ModeBadge.Render(s.Mode.Label())
	if s.Notice != "" {
		left += "  " + t.Notice.Render(s.Notice)
	} else if s.BackendMessage != "" {
		left += "  " + t.ShortcutDesc.Render(util.FirstLine(s.BackendMessage))
	}

	var hints []string
	for _, sc := range s.Shortcuts {
		hints = append(hints, t.ShortcutKey.Render(sc.Key)+" "+t.ShortcutDesc.Render(sc.Desc))
	}
	right := strings.Join(hints, "  ")

	inner := s.Width - t.StatusBar.GetHorizontalFrameSize()
	if lipgloss.Width(left)+lipgloss.Width(right)+1 > inner {
		right = ""
	}
	if lipgloss.Width(left) > inner {
		left = ansi.Truncate(left, inner, util.Ellipsis)
	}
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return t.StatusBar.Width(s.Width).Render(left + strings.Repeat(" ", gap) + right)
}
