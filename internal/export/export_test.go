// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/sladenchat-tui/internal/model"
	"github.com/jeranaias/sladenchat-tui/internal/storage"
)

func sampleRecord() *storage.Record {
	failed := model.NewAssistantMessage()
	failed.MarkError("Error: Failed to get response\nnetwork down")

	return &storage.Record{
		Generation: 1,
		Messages: []model.Message{
			model.NewUserMessage("Summarize the key findings."),
			model.NewMessage(model.RoleAssistant, "## Findings\n\n- one\n- two"),
			model.NewUserMessage("And the methodology?"),
			failed,
		},
	}
}

func TestMarkdownExporter_SkipsFailedTurns(t *testing.T) {
	out, err := NewMarkdownExporter(nil).Export(sampleRecord())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	md := string(out)

	if !strings.HasPrefix(md, "# Sladen Chat") {
		t.Errorf("missing title, got %q", md[:20])
	}
	if !strings.Contains(md, "## Findings") {
		t.Error("assistant markdown not copied through")
	}
	if strings.Contains(md, "network down") || strings.Contains(md, "methodology") {
		t.Error("failed turn should be omitted by default")
	}
}

func TestMarkdownExporter_IncludeErrors(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeErrors = true
	opts.IncludeTimestamps = false

	out, err := NewMarkdownExporter(opts).Export(sampleRecord())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	md := string(out)

	if !strings.Contains(md, "### Assistant (error)") {
		t.Error("error label missing")
	}
	if strings.Contains(md, "<sub>") {
		t.Error("timestamps should be omitted")
	}
}

func TestMarkdownExporter_Empty(t *testing.T) {
	if _, err := NewMarkdownExporter(nil).Export(&storage.Record{}); err == nil {
		t.Error("expected error for empty conversation")
	}
	if _, err := NewMarkdownExporter(nil).Export(nil); err == nil {
		t.Error("expected error for nil record")
	}
}

func TestJSONExporter_KeepsEverything(t *testing.T) {
	out, err := NewJSONExporter().Export(sampleRecord())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var rec storage.Record
	if err := json.Unmarshal(out, &rec); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(rec.Messages) != 4 || !rec.Messages[3].IsError {
		t.Errorf("JSON export lost messages: %+v", rec.Messages)
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format  string
		ext     string
		wantErr bool
	}{
		{"md", ".md", false},
		{"Markdown", ".md", false},
		{"json", ".json", false},
		{"pdf", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			exp, err := ForFormat(tc.format, nil)
			if tc.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ForFormat failed: %v", err)
			}
			if exp.FileExtension() != tc.ext {
				t.Errorf("FileExtension() = %q, want %q", exp.FileExtension(), tc.ext)
			}
		})
	}
}

func TestToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := ToFile(sampleRecord(), NewJSONExporter(), dir)
	if err != nil {
		t.Fatalf("ToFile failed: %v", err)
	}
	if filepath.Ext(path) != ".json" {
		t.Errorf("unexpected extension in %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("exported file missing: %v", err)
	}
}
