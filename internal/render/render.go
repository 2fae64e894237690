// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns assistant markdown into terminal output.
//
// Prose and code go through glamour. Mermaid fences, which a terminal cannot
// draw, are cut out first and shown as highlighted source under a label.
package render

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/patrickmn/go-cache"
)

// Style names accepted by Options.Style.
const (
	StyleAuto  = "auto"
	StyleDark  = "dark"
	StyleLight = "light"
	StylePlain = "notty"
)

// DiagramLabel heads every rendered mermaid block.
const DiagramLabel = "mermaid diagram"

// Options configures a Renderer.
type Options struct {
	// Width is the wrap width in cells (default 80).
	Width int

	// Style is one of the Style* constants (default auto).
	Style string
}

// Renderer renders markdown. It is safe for concurrent use.
type Renderer struct {
	mu    sync.Mutex
	width int
	style string
	term  *glamour.TermRenderer

	// Finished messages are rendered on every frame; cache them.
	cache *cache.Cache
}

// New creates a renderer.
func New(opts Options) (*Renderer, error) {
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Style == "" {
		opts.Style = StyleAuto
	}
	r := &Renderer{
		width: opts.Width,
		style: opts.Style,
		cache: cache.New(10*time.Minute, 20*time.Minute),
	}
	if err := r.rebuild(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) rebuild() error {
	styleOpt := glamour.WithStandardStyle(r.style)
	if r.style == StyleAuto {
		styleOpt = glamour.WithAutoStyle()
	}
	term, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(r.width))
	if err != nil {
		return err
	}
	r.term = term
	r.cache.Flush()
	return nil
}

// Width returns the wrap width.
func (r *Renderer) Width() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width
}

// SetWidth changes the wrap width. Cached output is discarded.
func (r *Renderer) SetWidth(width int) error {
	if width <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if width == r.width {
		return nil
	}
	r.width = width
	return r.rebuild()
}

// Render returns the terminal form of md. If glamour fails the markdown is
// returned unchanged so a reply is never lost to a rendering problem.
func (r *Renderer) Render(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := cacheKey(md, r.width)
	if out, ok := r.cache.Get(key); ok {
		return out.(string)
	}

	var b strings.Builder
	pos := 0
	for _, block := range FindDiagrams(md) {
		b.WriteString(r.markdown(md[pos:block.Start]))
		b.WriteString(r.diagram(block.Source))
		b.WriteString("\n")
		pos = block.End
	}
	b.WriteString(r.markdown(md[pos:]))

	out := strings.TrimRight(b.String(), "\n")
	r.cache.SetDefault(key, out)
	return out
}

func (r *Renderer) markdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := r.term.Render(md)
	if err != nil {
		return md
	}
	return out
}

func (r *Renderer) diagram(source string) string {
	label := lipgloss.NewStyle().Bold(true).Faint(true).Render("[" + DiagramLabel + "]")
	code := Highlight(source, DiagramLanguage, r.style == StyleLight)

	return lipgloss.NewStyle().
		PaddingLeft(2).
		Render(label + "\n" + code)
}

// Highlight applies chroma highlighting for language. Unknown languages fall
// back to plain text; on any error the input is returned unchanged.
func Highlight(code, language string, light bool) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	styleName := "monokai"
	if light {
		styleName = "github"
	}
	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

func cacheKey(md string, width int) string {
	sum := sha1.Sum([]byte(md))
	return strconv.Itoa(width) + ":" + hex.EncodeToString(sum[:])
}
