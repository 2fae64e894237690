// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jeranaias/sladenchat-tui/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS conversation (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	generation    INTEGER NOT NULL,
	messages_json TEXT    NOT NULL,
	updated_at    INTEGER NOT NULL
);
`

// SQLiteStore keeps the conversation in a single-row SQLite table.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("storage path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load implements ConversationStore.
func (s *SQLiteStore) Load(ctx context.Context) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, ErrClosed
	}
	return s.load(ctx, s.db)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *SQLiteStore) load(ctx context.Context, q querier) (*Record, error) {
	var (
		generation int64
		payload    string
		updatedAt  int64
	)
	err := q.QueryRowContext(ctx,
		"SELECT generation, messages_json, updated_at FROM conversation WHERE id = 1",
	).Scan(&generation, &payload, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return emptyRecord(), nil
	}
	if err != nil {
		return nil, &StoreError{Message: "failed to read conversation", Cause: err}
	}

	rec := &Record{
		Generation: uint64(generation),
		UpdatedAt:  time.UnixMilli(updatedAt),
	}
	if err := json.Unmarshal([]byte(payload), &rec.Messages); err != nil {
		return nil, &StoreError{Message: ErrCorrupt.Message, Cause: err}
	}
	if rec.Messages == nil {
		rec.Messages = []model.Message{}
	}
	return rec, nil
}

// Save implements ConversationStore. The generation check and the write run
// in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("nil record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return ErrClosed
	}

	out := normalize(rec)
	payload, err := json.Marshal(out.Messages)
	if err != nil {
		return &StoreError{Message: "failed to encode conversation", Cause: err}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StoreError{Message: "failed to begin transaction", Cause: err}
	}
	defer tx.Rollback()

	current, err := s.load(ctx, tx)
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	if err == nil && out.Generation < current.Generation {
		return staleError(current.Generation, out.Generation)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversation (id, generation, messages_json, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			generation = excluded.generation,
			messages_json = excluded.messages_json,
			updated_at = excluded.updated_at`,
		int64(out.Generation), string(payload), out.UpdatedAt.UnixMilli())
	if err != nil {
		return &StoreError{Message: "failed to write conversation", Cause: err}
	}

	if err := tx.Commit(); err != nil {
		return &StoreError{Message: "failed to commit conversation", Cause: err}
	}
	return nil
}

// Close implements ConversationStore.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
