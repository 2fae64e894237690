// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sladenchat-tui/internal/ui/styles"
)

// DefaultSuggestions are the starter questions offered on an empty chat.
var DefaultSuggestions = []string{
	"Summarize the key findings.",
	"What are the main arguments?",
	"Explain the methodology used.",
}

// Suggestions is the empty-chat panel: a prompt and numbered questions that
// can be sent with the matching digit key.
type Suggestions struct {
	Prompt  string
	Heading string
	Items   []string
	Width   int
	Height  int

	theme *styles.Theme
}

// NewSuggestions creates the panel with DefaultSuggestions.
func NewSuggestions(theme *styles.Theme) *Suggestions {
	return &Suggestions{
		Prompt:  "Start a retrieval by typing your query below",
		Heading: "Try asking",
		Items:   DefaultSuggestions,
		theme:   theme,
	}
}

// Pick returns the suggestion for a key press ("1".."9").
func (s *Suggestions) Pick(key string) (string, bool) {
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 || n > len(s.Items) {
		return "", false
	}
	return s.Items[n-1], true
}

// View renders the panel centered in Width x Height. With showItems false
// only the prompt is shown.
func (s *Suggestions) View(showItems bool) string {
	t := s.theme
	lines := []string{t.EmptyPrompt.Render(s.Prompt)}

	if showItems && len(s.Items) > 0 {
		lines = append(lines, "", t.PickerTitle.Render(s.Heading))
		for i, item := range s.Items {
			lines = append(lines, t.SuggestionKey.Render(strconv.Itoa(i+1))+"  "+t.Suggestion.Render(item))
		}
	}

	block := lipgloss.JoinVertical(lipgloss.Left, lines...)
	if s.Width <= 0 || s.Height <= 0 {
		return block
	}
	return lipgloss.Place(s.Width, s.Height, lipgloss.Center, lipgloss.Center, strings.TrimRight(block, "\n"))
}
