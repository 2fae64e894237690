// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/sladenchat-tui/internal/model"
	"github.com/jeranaias/sladenchat-tui/internal/storage"
)

// MarkdownExporter exports conversations to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export renders each turn as a heading per speaker. Assistant content is
// already Markdown and is copied through untouched.
func (e *MarkdownExporter) Export(rec *storage.Record) ([]byte, error) {
	if rec == nil {
		return nil, errors.New("conversation is nil")
	}

	msgs := e.filter(rec.Messages)
	if len(msgs) == 0 {
		return nil, errors.New("conversation has no messages")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", e.options.Title)
	if !rec.UpdatedAt.IsZero() {
		fmt.Fprintf(&sb, "*Last updated %s*\n\n", formatTimestamp(rec.UpdatedAt))
	}

	for i, msg := range msgs {
		label := msg.Role.DisplayName()
		if msg.IsError {
			label += " (error)"
		}
		if e.options.IncludeTimestamps && !msg.CreatedAt.IsZero() {
			fmt.Fprintf(&sb, "### %s <sub>%s</sub>\n\n", label, msg.CreatedAt.Format("15:04:05"))
		} else {
			fmt.Fprintf(&sb, "### %s\n\n", label)
		}

		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n\n")
		if i < len(msgs)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// filter drops failed turns unless IncludeErrors is set. The user message of
// a failed turn goes with it.
func (e *MarkdownExporter) filter(msgs []model.Message) []model.Message {
	if e.options.IncludeErrors {
		return msgs
	}
	out := make([]model.Message, 0, len(msgs))
	for i, msg := range msgs {
		if msg.IsError {
			continue
		}
		if msg.IsUser() && i+1 < len(msgs) && msgs[i+1].IsError {
			continue
		}
		out = append(out, msg)
	}
	return out
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}
