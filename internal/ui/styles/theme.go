// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names as stored in config.
const (
	ThemeDark   = "dark"
	ThemeLight  = "light"
	ThemeSystem = "system"
)

// Title is the product name shown in the header. The slash is accented.
const Title = "SLADEN/CHAT"

// Theme holds all the styled components for the application.
type Theme struct {
	// Name is the configured theme; IsDark is what it resolved to.
	Name         string
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// HEADER
	// ==========================================================================

	Header      lipgloss.Style
	TitleText   lipgloss.Style
	TitleAccent lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	GuestBadge  lipgloss.Style
	Version     lipgloss.Style
	Username    lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	ErrorBubble     lipgloss.Style
	RoleLabel       lipgloss.Style

	// ==========================================================================
	// INPUT
	// ==========================================================================

	InputContainer lipgloss.Style
	InputError     lipgloss.Style
	ModeBadge      lipgloss.Style

	// ==========================================================================
	// STATUS BAR
	// ==========================================================================

	StatusBar    lipgloss.Style
	Connected    lipgloss.Style
	Disconnected lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// POPUPS AND EMPTY STATE
	// ==========================================================================

	PickerBox          lipgloss.Style
	PickerTitle        lipgloss.Style
	PickerItem         lipgloss.Style
	PickerItemSelected lipgloss.Style
	PickerDesc         lipgloss.Style

	EmptyPrompt   lipgloss.Style
	Suggestion    lipgloss.Style
	SuggestionKey lipgloss.Style
	Spinner       lipgloss.Style
	Thinking      lipgloss.Style
	Notice        lipgloss.Style
}

// ResolveDark reports whether name means a dark background. Unknown names are
// treated as ThemeSystem.
func ResolveDark(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ThemeDark:
		return true
	case ThemeLight:
		return false
	default:
		return termenv.HasDarkBackground()
	}
}

// NewTheme creates a theme for the configured name and applies its
// background choice to lipgloss, so adaptive colors follow it.
func NewTheme(name string) *Theme {
	isDark := ResolveDark(name)
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		Name:         name,
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// MarkdownStyle returns the glamour style name matching the theme.
func (t *Theme) MarkdownStyle() string {
	if t.ColorProfile == termenv.Ascii {
		return "notty"
	}
	if t.IsDark {
		return ThemeDark
	}
	return ThemeLight
}

func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.TitleText = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.TitleAccent = lipgloss.NewStyle().
		Bold(true).
		Foreground(Emerald)

	t.TabActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Emerald).
		Padding(0, 1)

	t.TabInactive = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)

	t.GuestBadge = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.Version = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Username = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Messages
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		Padding(0, 1)

	t.AssistantBubble = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(AssistantBubbleBorder).
		PaddingLeft(1)

	t.ErrorBubble = lipgloss.NewStyle().
		Foreground(ErrorBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(ErrorBubbleBorder).
		PaddingLeft(1)

	t.RoleLabel = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Input
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputError = lipgloss.NewStyle().
		Foreground(Rose)

	t.ModeBadge = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.Connected = lipgloss.NewStyle().Foreground(Emerald)
	t.Disconnected = lipgloss.NewStyle().Foreground(Rose)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Mode picker
	t.PickerBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Background(Surface).
		Padding(0, 1)

	t.PickerTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.PickerItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		PaddingLeft(2)

	t.PickerItemSelected = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.PickerDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Empty state
	t.EmptyPrompt = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.Suggestion = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.SuggestionKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.Spinner = lipgloss.NewStyle().Foreground(Purple)
	t.Thinking = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	t.Notice = lipgloss.NewStyle().Foreground(Emerald)
}

// RenderTitle renders Title with the slash accented.
func (t *Theme) RenderTitle() string {
	left, right, ok := strings.Cut(Title, "/")
	if !ok {
		return t.TitleText.Render(Title)
	}
	return t.TitleText.Render(left) + t.TitleAccent.Render("/") + t.TitleText.Render(right)
}
