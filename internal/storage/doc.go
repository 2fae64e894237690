// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the chat conversation between sessions.
//
// The conversation is always read and written whole; there is no merge or
// diff. Each write carries a generation number that is bumped when the
// history is cleared, and a store refuses writes older than what it holds.
// That keeps a turn that finishes after a clear from bringing the cleared
// messages back.
//
// Two backends are provided:
//   - FileStore: a JSON document written atomically (default)
//   - SQLiteStore: a single-row table in a WAL-mode SQLite database
package storage
