// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/sladenchat-tui/internal/model"
)

// =============================================================================
// RECORD
// =============================================================================

// Record is the persisted conversation.
type Record struct {
	Generation uint64          `json:"generation"`
	Messages   []model.Message `json:"messages"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// emptyRecord is what a store returns before anything was saved.
func emptyRecord() *Record {
	return &Record{Messages: []model.Message{}}
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// ConversationStore loads and saves the whole conversation.
type ConversationStore interface {
	// Load returns the stored record, or an empty record at generation 0
	// when nothing has been saved yet.
	Load(ctx context.Context) (*Record, error)

	// Save overwrites the stored record. It returns ErrStaleGeneration
	// when rec.Generation is older than the stored generation.
	Save(ctx context.Context, rec *Record) error

	Close() error
}

// =============================================================================
// ERRORS
// =============================================================================

// StoreError represents a storage failure. It can be compared using errors.Is.
type StoreError struct {
	Message string
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Is matches store errors by message so wrapped sentinels compare equal.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

var (
	// ErrStaleGeneration rejects a write made before the last clear.
	ErrStaleGeneration = &StoreError{Message: "stale conversation generation"}

	// ErrCorrupt means the stored data could not be decoded.
	ErrCorrupt = &StoreError{Message: "stored conversation is corrupt"}

	// ErrClosed is returned after Close.
	ErrClosed = &StoreError{Message: "store is closed"}
)

func staleError(stored, got uint64) error {
	return &StoreError{
		Message: ErrStaleGeneration.Message,
		Cause:   fmt.Errorf("stored generation %d, write generation %d", stored, got),
	}
}

// =============================================================================
// FACTORY
// =============================================================================

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open creates the store for the named backend at path.
func Open(backend, path string) (ConversationStore, error) {
	switch backend {
	case "", BackendJSON:
		return NewFileStore(path)
	case BackendSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// normalize prepares rec for writing: nil messages become an empty list and
// the update time is stamped.
func normalize(rec *Record) *Record {
	out := &Record{
		Generation: rec.Generation,
		Messages:   model.Clone(rec.Messages),
		UpdatedAt:  rec.UpdatedAt,
	}
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = time.Now()
	}
	return out
}
