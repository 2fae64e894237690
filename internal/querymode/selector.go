// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package querymode

import (
	"fmt"
	"sync"
)

// PersistFunc stores the newly selected mode in user settings.
type PersistFunc func(Mode) error

// Selector holds the current query mode. It is safe for concurrent use.
type Selector struct {
	mu      sync.RWMutex
	current Mode
	persist PersistFunc
}

// NewSelector creates a selector starting at initial. An invalid initial value
// falls back to DefaultMode. persist may be nil.
func NewSelector(initial Mode, persist PersistFunc) *Selector {
	if !initial.Valid() {
		initial = DefaultMode
	}
	return &Selector{current: initial, persist: persist}
}

// Current returns the mode used for new queries.
func (s *Selector) Current() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Select validates value and makes it current. On an invalid value or a
// persistence failure the current mode is left unchanged.
func (s *Selector) Select(value string) error {
	mode, err := Parse(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if mode == s.current {
		return nil
	}
	if s.persist != nil {
		if err := s.persist(mode); err != nil {
			return fmt.Errorf("failed to save query mode: %w", err)
		}
	}
	s.current = mode
	return nil
}

// Sync adopts a mode that was changed outside this process (for example by
// editing the config file) without persisting it again.
func (s *Selector) Sync(mode Mode) bool {
	if !mode.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == mode {
		return false
	}
	s.current = mode
	return true
}
