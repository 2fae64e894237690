// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

// EventKind identifies what changed.
type EventKind int

const (
	// EventMessagesChanged: the message list or a message's content changed.
	EventMessagesChanged EventKind = iota

	// EventScroll asks the view to follow the newest message. The view
	// decides whether to honor it (it should not when the user scrolled up)
	// and how to rate-limit it.
	EventScroll

	// EventInputCleared asks the view to empty its input field.
	EventInputCleared

	// EventSendingChanged: Sending() flipped.
	EventSendingChanged

	// EventTurnFinished: a turn reached its final content.
	EventTurnFinished

	// EventCleared: the history was cleared.
	EventCleared

	// EventModeChanged: a new query mode was selected.
	EventModeChanged

	// EventInputError: InputError() changed.
	EventInputError

	// EventPersistFailed: saving the conversation failed; Err says why.
	EventPersistFailed

	// EventClearedElsewhere: another process cleared the shared store while
	// a turn was running, and the finished turn was dropped with it.
	EventClearedElsewhere
)

func (k EventKind) String() string {
	switch k {
	case EventMessagesChanged:
		return "messages_changed"
	case EventScroll:
		return "scroll"
	case EventInputCleared:
		return "input_cleared"
	case EventSendingChanged:
		return "sending_changed"
	case EventTurnFinished:
		return "turn_finished"
	case EventCleared:
		return "cleared"
	case EventModeChanged:
		return "mode_changed"
	case EventInputError:
		return "input_error"
	case EventPersistFailed:
		return "persist_failed"
	case EventClearedElsewhere:
		return "cleared_elsewhere"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after the controller's state changed.
type Event struct {
	Kind EventKind

	// Err is set for EventPersistFailed and, on EventTurnFinished, when the
	// turn ended in an error.
	Err error
}

// Listener receives events. It runs on the goroutine that caused the change
// and must not block for long; it may call the controller's read methods.
type Listener func(Event)
