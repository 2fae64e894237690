// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the UI pieces the chat view is assembled from.

# Components

Header (header.go) - Title, CHAT tab, guest badge, server version and username.
StatusBar (statusbar.go) - Connection state, current query mode and shortcuts.
RenderMessage (message.go) - One conversation message as a styled block.
ModePicker (modepicker.go) - The "/" popup for choosing a query mode.
Suggestions (suggestions.go) - Starter questions shown on an empty chat.

Components are plain structs with a View method. They hold no Bubble Tea
state of their own; the chat model owns input handling and passes the
results in.
*/
package components
