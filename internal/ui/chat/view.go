// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sladenchat-tui/internal/i18n"
	"github.com/jeranaias/sladenchat-tui/internal/ui/components"
)

// View renders the whole screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	parts := []string{
		m.header.View(),
		m.viewport.View(),
	}
	if m.picker.Visible() {
		parts = append(parts, lipgloss.NewStyle().PaddingLeft(2).Render(m.picker.View()))
	}
	parts = append(parts,
		m.renderInputError(),
		m.theme.InputContainer.Render(m.input.View()),
		m.statusBar.View(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderInputError() string {
	text := m.session.InputError()
	if text == "" {
		return ""
	}
	return m.theme.InputError.Render(" " + text)
}

// refresh rebuilds the transcript from a controller snapshot.
func (m *Model) refresh() {
	m.viewport.SetContent(m.transcript())
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// transcript renders the conversation, or the empty-chat panel.
func (m *Model) transcript() string {
	messages := m.session.Snapshot()
	if len(messages) == 0 {
		return m.suggestions.View(m.showSuggestions)
	}

	view := components.MessageView{
		Width:    m.width - 2,
		Renderer: m.renderer,
		Theme:    m.theme,
	}

	var b strings.Builder
	b.WriteString(view.RenderAll(messages))

	last := messages[len(messages)-1]
	if m.session.Sending() && last.IsAssistant() && last.IsEmpty() {
		b.WriteString("\n")
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(m.theme.Thinking.Render(m.printer.T(i18n.KeyThinking)))
	}
	b.WriteString("\n")
	return b.String()
}
