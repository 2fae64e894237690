// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the Bubble Tea chat view for Sladen Chat.

The view never edits the conversation. It sends user intent to the session
controller (submit, clear, select mode) and redraws from controller snapshots
when controller events arrive. Events are bridged into the Bubble Tea loop
with Program.Send, so all view state changes happen on the update goroutine.

# Files

  - model.go: Model, its options and layout
  - update.go: key handling, controller events, health polling
  - view.go: rendering of header, transcript, popup, input and status bar
  - keys.go: key bindings
  - messages.go: tea.Msg types
  - run.go: program setup, controller and config-watcher bridges

# Scrolling

The transcript follows new content while the viewport is at the bottom.
Scrolling up suspends following until the user scrolls back down or sends
a new query. While streaming, redraws are limited to about 30 per second.
*/
package chat
