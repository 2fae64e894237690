// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the saved conversation out as Markdown or JSON.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/sladenchat-tui/internal/storage"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a conversation record into a file format.
type Exporter interface {
	Export(rec *storage.Record) ([]byte, error)
	FileExtension() string
}

// Options configures export behavior.
type Options struct {
	// IncludeErrors keeps failed answers in the output.
	IncludeErrors bool

	// IncludeTimestamps adds per-message times to Markdown output.
	IncludeTimestamps bool

	// Title heads the Markdown document.
	Title string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		IncludeErrors:     false,
		IncludeTimestamps: true,
		Title:             "Sladen Chat",
	}
}

// ForFormat returns the exporter for "md"/"markdown" or "json".
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(format) {
	case "", "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (use md or json)", format)
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ToFile exports rec into dir with a timestamped name and returns the path.
func ToFile(rec *storage.Record, exporter Exporter, dir string) (string, error) {
	content, err := exporter.Export(rec)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	name := fmt.Sprintf("sladen_chat_%s%s", time.Now().Format("20060102_150405"), exporter.FileExtension())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
