// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// HistoryEntry is a prior message as the backend expects it in
// conversation_history.
type HistoryEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// =============================================================================
// HISTORY WINDOW
// =============================================================================

// HistoryWindow returns the trailing slice of non-error messages that fits in
// turns exchanges (2 messages per turn). A non-positive turns value yields no
// history.
func HistoryWindow(messages []Message, turns int) []HistoryEntry {
	if turns <= 0 {
		return []HistoryEntry{}
	}

	kept := make([]HistoryEntry, 0, len(messages))
	for _, msg := range messages {
		if msg.IsError {
			continue
		}
		kept = append(kept, HistoryEntry{Role: msg.Role, Content: msg.Content})
	}

	limit := turns * 2
	if len(kept) > limit {
		kept = kept[len(kept)-limit:]
	}
	return kept
}

// =============================================================================
// COPYING
// =============================================================================

// Clone returns an independent copy of messages. A nil input yields an empty,
// non-nil slice so callers can range and marshal it without checks.
func Clone(messages []Message) []Message {
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}

// LastAssistant returns the newest assistant message that completed without
// error, or false when there is none.
func LastAssistant(messages []Message) (Message, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.IsAssistant() && !msg.IsError && !msg.IsEmpty() {
			return msg, true
		}
	}
	return Message{}, false
}
