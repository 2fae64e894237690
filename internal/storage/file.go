// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jeranaias/sladenchat-tui/internal/model"
	"github.com/jeranaias/sladenchat-tui/internal/util"
)

// FileStore keeps the conversation in one JSON file.
type FileStore struct {
	mu     sync.Mutex
	path   string
	closed bool
}

// NewFileStore creates a store backed by the JSON file at path. The parent
// directory is created if needed; the file itself is created on first save.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("storage path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements ConversationStore.
func (s *FileStore) Load(ctx context.Context) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	return s.read()
}

// Save implements ConversationStore.
func (s *FileStore) Save(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec == nil {
		return errors.New("nil record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	current, err := s.read()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	// A corrupt file is overwritten rather than blocking every future save.
	if err == nil && rec.Generation < current.Generation {
		return staleError(current.Generation, rec.Generation)
	}

	data, err := json.MarshalIndent(normalize(rec), "", "  ")
	if err != nil {
		return &StoreError{Message: "failed to encode conversation", Cause: err}
	}
	if err := util.AtomicWriteFile(s.path, data, 0600); err != nil {
		return &StoreError{Message: "failed to write conversation", Cause: err}
	}
	return nil
}

// Close implements ConversationStore.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// read loads the file. Callers hold s.mu.
func (s *FileStore) read() (*Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return emptyRecord(), nil
	}
	if err != nil {
		return nil, &StoreError{Message: "failed to read conversation", Cause: err}
	}

	rec := emptyRecord()
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, &StoreError{Message: ErrCorrupt.Message, Cause: err}
	}
	if rec.Messages == nil {
		rec.Messages = []model.Message{}
	}
	return rec, nil
}
