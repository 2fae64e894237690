// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/sladenchat-tui/internal/querymode"
	"github.com/jeranaias/sladenchat-tui/internal/ui/styles"
	"github.com/jeranaias/sladenchat-tui/internal/util"
)

// =============================================================================
// MODE PICKER
// =============================================================================

// ModePicker is the popup opened by typing "/" in an empty input. The text
// typed after the slash filters the list by prefix.
type ModePicker struct {
	Title   string
	Width   int
	visible bool
	filter  string
	items   []querymode.Mode
	cursor  int

	theme *styles.Theme
}

// NewModePicker creates a hidden picker.
func NewModePicker(theme *styles.Theme) *ModePicker {
	return &ModePicker{
		Title: "Query Mode",
		Width: 60,
		items: querymode.All(),
		theme: theme,
	}
}

// Show opens the picker with the cursor on current.
func (p *ModePicker) Show(current querymode.Mode) {
	p.visible = true
	p.SetFilter("")
	for i, m := range p.items {
		if m == current {
			p.cursor = i
		}
	}
}

// Hide closes the picker.
func (p *ModePicker) Hide() {
	p.visible = false
	p.filter = ""
}

// Visible reports whether the picker is open.
func (p *ModePicker) Visible() bool {
	return p.visible
}

// SetFilter narrows the list to modes starting with filter.
func (p *ModePicker) SetFilter(filter string) {
	p.filter = strings.ToLower(strings.TrimSpace(filter))
	p.items = p.items[:0]
	for _, m := range querymode.All() {
		if strings.HasPrefix(string(m), p.filter) {
			p.items = append(p.items, m)
		}
	}
	if p.cursor >= len(p.items) {
		p.cursor = 0
	}
}

// Items returns the modes currently listed.
func (p *ModePicker) Items() []querymode.Mode {
	return p.items
}

// Up moves the cursor up, wrapping at the top.
func (p *ModePicker) Up() {
	if len(p.items) == 0 {
		return
	}
	p.cursor = (p.cursor - 1 + len(p.items)) % len(p.items)
}

// Down moves the cursor down, wrapping at the bottom.
func (p *ModePicker) Down() {
	if len(p.items) == 0 {
		return
	}
	p.cursor = (p.cursor + 1) % len(p.items)
}

// Selected returns the mode under the cursor, or false when the filter
// matches nothing.
func (p *ModePicker) Selected() (querymode.Mode, bool) {
	if len(p.items) == 0 {
		return "", false
	}
	return p.items[p.cursor], true
}

// View renders the popup, or "" when hidden.
func (p *ModePicker) View() string {
	if !p.visible {
		return ""
	}
	t := p.theme

	lines := []string{t.PickerTitle.Render(p.Title)}
	if len(p.items) == 0 {
		lines = append(lines, t.PickerDesc.Render("  /"+p.filter+": no match"))
	}

	descWidth := p.Width - 16
	for i, m := range p.items {
		name := util.PadRight(m.Label(), 8)
		desc := t.PickerDesc.Render(util.TruncateWidth(m.Description(), descWidth))
		if i == p.cursor {
			lines = append(lines, t.PickerItemSelected.Render("> "+name)+" "+desc)
		} else {
			lines = append(lines, t.PickerItem.Render(name)+" "+desc)
		}
	}

	return t.PickerBox.Render(strings.Join(lines, "\n"))
}
