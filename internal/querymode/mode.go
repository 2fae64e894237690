// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package querymode defines the retrieval strategies the backend supports and
// tracks which one is used for new queries.
package querymode

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// MODE TYPE
// =============================================================================

// Mode is a retrieval strategy understood by the LightRAG query endpoints.
type Mode string

const (
	ModeNaive  Mode = "naive"
	ModeLocal  Mode = "local"
	ModeGlobal Mode = "global"
	ModeHybrid Mode = "hybrid"
	ModeMix    Mode = "mix"
	ModeBypass Mode = "bypass"
)

// DefaultMode is used when no mode has been configured.
const DefaultMode = ModeMix

// ErrInvalidMode is returned when a value is not one of the known modes.
var ErrInvalidMode = errors.New("invalid query mode")

var allModes = []Mode{ModeNaive, ModeLocal, ModeGlobal, ModeHybrid, ModeMix, ModeBypass}

var descriptions = map[Mode]string{
	ModeNaive:  "Simple search across your documents.",
	ModeLocal:  "Search focused on specific details and context nearby your query.",
	ModeGlobal: "Search using broader connections and relationships within your data.",
	ModeHybrid: "Combines both detailed local search and broader global search.",
	ModeMix:    "Mixes knowledge graph connections with standard document search.",
	ModeBypass: "Ask the AI directly, without searching documents first.",
}

// All returns every mode in display order.
func All() []Mode {
	out := make([]Mode, len(allModes))
	copy(out, allModes)
	return out
}

// Parse converts s into a Mode. Matching ignores case and surrounding space.
func Parse(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	_, ok := descriptions[m]
	return ok
}

// String returns the wire value of the mode.
func (m Mode) String() string {
	return string(m)
}

// Label returns the capitalized name shown in pickers.
func (m Mode) Label() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

// Description returns the one-line help text for the mode.
func (m Mode) Description() string {
	return descriptions[m]
}

// Names returns the wire values of all modes, for usage text.
func Names() []string {
	names := make([]string, len(allModes))
	for i, m := range allModes {
		names[i] = string(m)
	}
	return names
}
