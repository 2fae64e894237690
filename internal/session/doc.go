// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the chat session controller.
//
// The Controller turns a typed query plus the current query mode into a
// streamed or single-shot backend call, keeps the conversation, and reconciles
// partial answers with clears, resubmissions and failures.
//
// # Key Types
//
//   - Controller: owns the message list and the sending flag
//   - Backend: the two query calls the controller needs
//   - Event: change notifications for the view layer
//
// # Usage
//
//	ctrl, err := session.New(session.Options{
//	    Backend:  client,
//	    Store:    store,
//	    Modes:    selector,
//	    Settings: func() session.Settings { return settingsFromConfig() },
//	})
//	unsubscribe := ctrl.Subscribe(func(ev session.Event) { redraw() })
//	defer unsubscribe()
//
//	_ = ctrl.Submit(ctx, "What are the main arguments?")
//
// # Rules
//
// Every accepted submit appends a user message and an assistant placeholder
// together. Only one turn runs at a time; a submit while sending is rejected,
// not queued. Transport and stream failures end up as the assistant message's
// content with IsError set, so Submit never returns them. The conversation is
// saved once per turn and once per clear, stamped with a generation number so
// a turn finishing after a clear cannot restore the cleared history.
package session
