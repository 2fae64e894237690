// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// =============================================================================
// DIAGRAM BLOCKS
// =============================================================================

// Block is a fenced diagram block found in a markdown document.
type Block struct {
	// Start and End are byte offsets of the whole fence, including the
	// opening and closing fence lines.
	Start int
	End   int

	// Source is the diagram source between the fences.
	Source string
}

// DiagramLanguage is the fence info string that marks a diagram.
const DiagramLanguage = "mermaid"

var parser = goldmark.New().Parser()

// FindDiagrams returns the mermaid fences in src in document order. An
// unterminated fence (common while a reply is still streaming) runs to the
// end of the document.
func FindDiagrams(src string) []Block {
	source := []byte(src)
	doc := parser.Parse(text.NewReader(source))

	var blocks []Block
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if !strings.EqualFold(string(fence.Language(source)), DiagramLanguage) || fence.Info == nil {
			return ast.WalkSkipChildren, nil
		}
		blocks = append(blocks, diagramBlock(fence, source))
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

func diagramBlock(fence *ast.FencedCodeBlock, source []byte) Block {
	start := lineStart(source, fence.Info.Segment.Start)

	var body bytes.Buffer
	pos := lineEnd(source, fence.Info.Segment.Stop)
	lines := fence.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		body.Write(seg.Value(source))
		pos = seg.Stop
	}

	end := pos
	if end < len(source) {
		closing := lineEnd(source, end)
		trimmed := bytes.TrimSpace(source[end:closing])
		if bytes.HasPrefix(trimmed, []byte("```")) || bytes.HasPrefix(trimmed, []byte("~~~")) {
			end = closing
		}
	}

	return Block{
		Start:  start,
		End:    end,
		Source: strings.TrimRight(body.String(), "\n"),
	}
}

// lineStart returns the offset of the first byte of the line holding pos.
func lineStart(source []byte, pos int) int {
	if i := bytes.LastIndexByte(source[:pos], '\n'); i >= 0 {
		return i + 1
	}
	return 0
}

// lineEnd returns the offset just past the newline ending the line at pos.
func lineEnd(source []byte, pos int) int {
	if pos >= len(source) {
		return len(source)
	}
	if i := bytes.IndexByte(source[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(source)
}
