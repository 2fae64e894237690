// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sladenchat-tui/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the single-line title bar.
type Header struct {
	Width int

	// Tab is the active tab label. Only the chat tab exists in the terminal.
	Tab string

	// GuestLabel is shown as a badge when non-empty.
	GuestLabel string

	// Version is "core/api" from the server, or empty when unknown.
	Version string

	// Username from the bearer token, or empty.
	Username string

	theme *styles.Theme
}

// NewHeader creates a header with the chat tab active.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{Width: 80, Tab: "CHAT", theme: theme}
}

// View renders the header padded to Width. When the line is too narrow the
// right-hand details are dropped before the title.
func (h *Header) View() string {
	t := h.theme
	left := t.RenderTitle() + " " + t.TabActive.Render(strings.ToUpper(h.Tab))

	var right []string
	if h.GuestLabel != "" {
		right = append(right, t.GuestBadge.Render(h.GuestLabel))
	}
	if h.Version != "" {
		right = append(right, t.Version.Render("v"+h.Version))
	}
	if h.Username != "" {
		right = append(right, t.Username.Render(h.Username))
	}
	rightText := strings.Join(right, "  ")

	inner := h.Width - t.Header.GetHorizontalFrameSize()
	gap := inner - lipgloss.Width(left) - lipgloss.Width(rightText)
	if gap < 1 {
		rightText = ""
		gap = inner - lipgloss.Width(left)
	}
	if gap < 0 {
		gap = 0
	}

	return t.Header.Width(h.Width).Render(left + strings.Repeat(" ", gap) + rightText)
}
