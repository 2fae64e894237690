// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the sladen packages: crash-safe
// file writes, terminal-width aware text helpers and the data directory layout.
package util
