// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const withDiagram = "Intro text.\n\n```mermaid\ngraph TD\n  A --> B\n```\n\nOutro text.\n"

func TestFindDiagrams(t *testing.T) {
	blocks := FindDiagrams(withDiagram)
	require.Len(t, blocks, 1)

	b := blocks[0]
	assert.Equal(t, "graph TD\n  A --> B", b.Source)
	assert.True(t, strings.HasPrefix(withDiagram[b.Start:], "```mermaid"))
	assert.True(t, strings.HasSuffix(withDiagram[:b.End], "```\n"))
	assert.Equal(t, "\nOutro text.\n", withDiagram[b.End:])
}

func TestFindDiagrams_IgnoresOtherFences(t *testing.T) {
	src := "```go\nfunc main() {}\n```\n\n```\nplain\n```\n"
	assert.Empty(t, FindDiagrams(src))
}

func TestFindDiagrams_Unterminated(t *testing.T) {
	src := "Streaming...\n\n```mermaid\nsequenceDiagram\n  A->>B: hi\n"
	blocks := FindDiagrams(src)
	require.Len(t, blocks, 1)
	assert.Equal(t, len(src), blocks[0].End)
	assert.Contains(t, blocks[0].Source, "A->>B: hi")
}

func TestFindDiagrams_Multiple(t *testing.T) {
	src := "```mermaid\ngraph LR\n```\ntext\n```mermaid\npie\n```\n"
	blocks := FindDiagrams(src)
	require.Len(t, blocks, 2)
	assert.Equal(t, "graph LR", blocks[0].Source)
	assert.Equal(t, "pie", blocks[1].Source)
}

func TestRender_LabelsDiagrams(t *testing.T) {
	r, err := New(Options{Width: 60, Style: StylePlain})
	require.NoError(t, err)

	out := ansi.Strip(r.Render(withDiagram))
	assert.Contains(t, out, DiagramLabel)
	assert.Contains(t, out, "A --> B")
	assert.Contains(t, out, "Intro text.")
	assert.Contains(t, out, "Outro text.")
	assert.NotContains(t, out, "```")
}

func TestRender_Empty(t *testing.T) {
	r, err := New(Options{Style: StylePlain})
	require.NoError(t, err)
	assert.Empty(t, r.Render("  \n"))
}

func TestRender_CachedPerWidth(t *testing.T) {
	r, err := New(Options{Width: 40, Style: StylePlain})
	require.NoError(t, err)

	long := strings.Repeat("word ", 30)
	narrow := r.Render(long)
	assert.Equal(t, narrow, r.Render(long))

	require.NoError(t, r.SetWidth(100))
	assert.Equal(t, 100, r.Width())
	wide := r.Render(long)
	assert.Less(t, strings.Count(wide, "\n"), strings.Count(narrow, "\n"))
}

func TestHighlight_UnknownLanguage(t *testing.T) {
	out := Highlight("just text", "no-such-language", false)
	assert.Contains(t, ansi.Strip(out), "just text")
}
