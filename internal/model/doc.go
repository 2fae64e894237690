// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages.
//
// # Key Types
//
//   - Message: one chat entry with role, content and an error flag
//   - Role: message role enumeration (user, assistant)
//   - HistoryEntry: the {role, content} pair sent back to the backend
//
// # Usage
//
// A turn is a user message followed by an assistant placeholder that grows
// while the answer streams in:
//
//	user := model.NewUserMessage("What are the main arguments?")
//	reply := model.NewAssistantMessage()
//	reply.AppendContent("The paper argues")
//
// Build the history window for the next request:
//
//	history := model.HistoryWindow(messages, 3)
package model
