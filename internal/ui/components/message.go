// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sladenchat-tui/internal/model"
	"github.com/jeranaias/sladenchat-tui/internal/render"
	"github.com/jeranaias/sladenchat-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// MessageView renders conversation messages at a fixed width.
type MessageView struct {
	Width int

	// Renderer formats assistant markdown; nil shows the raw text.
	Renderer *render.Renderer

	Theme *styles.Theme
}

// Render returns msg as a labelled block. User messages sit on the right,
// assistant replies on the left. Failed replies keep their raw text, since
// they carry server errors rather than markdown.
func (v MessageView) Render(msg model.Message) string {
	width := v.Width
	if width < 20 {
		width = 20
	}
	t := v.Theme

	label := t.RoleLabel.Render(msg.Role.DisplayName())

	switch {
	case msg.IsUser():
		bubbleWidth := lipgloss.Width(msg.Content) + t.UserBubble.GetHorizontalFrameSize()
		if limit := width * 3 / 4; bubbleWidth > limit {
			bubbleWidth = limit
		}
		bubble := t.UserBubble.Width(bubbleWidth).Render(msg.Content)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right,
			lipgloss.JoinVertical(lipgloss.Right, label, bubble))

	case msg.IsError:
		body := t.ErrorBubble.Width(width - 2).Render(styles.StatusIndicators.Error + " " + msg.Content)
		return lipgloss.JoinVertical(lipgloss.Left, label, body)

	default:
		content := msg.Content
		if v.Renderer != nil {
			content = strings.Trim(v.Renderer.Render(content), "\n")
		}
		if content == "" {
			return label
		}
		return lipgloss.JoinVertical(lipgloss.Left, label, t.AssistantBubble.Render(content))
	}
}

// RenderAll renders messages separated by blank lines.
func (v MessageView) RenderAll(messages []model.Message) string {
	blocks := make([]string, 0, len(messages))
	for _, msg := range messages {
		blocks = append(blocks, v.Render(msg))
	}
	return strings.Join(blocks, "\n\n")
}
