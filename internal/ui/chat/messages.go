// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/sladenchat-tui/internal/config"
	"github.com/jeranaias/sladenchat-tui/internal/lightrag"
	"github.com/jeranaias/sladenchat-tui/internal/session"
)

// =============================================================================
// CONTROLLER MESSAGES
// =============================================================================

// ControllerEventMsg carries a session controller event into the update loop.
type ControllerEventMsg struct {
	Event session.Event
}

// submitDoneMsg reports that a Submit call returned.
type submitDoneMsg struct {
	err error
}

// modeSelectedMsg reports that SelectMode returned.
type modeSelectedMsg struct {
	err error
}

// clearDoneMsg reports that ClearHistory returned.
type clearDoneMsg struct {
	err error
}

// =============================================================================
// BACKEND STATUS MESSAGES
// =============================================================================

// healthTickMsg triggers the next health check.
type healthTickMsg struct{}

// healthMsg is the result of a health check.
type healthMsg struct {
	status *lightrag.HealthStatus
	err    error
}

// authStatusMsg is the result of an auth-status check.
type authStatusMsg struct {
	status *lightrag.AuthStatus
	err    error
}

// =============================================================================
// UI MESSAGES
// =============================================================================

// ConfigChangedMsg delivers a reloaded config file.
type ConfigChangedMsg struct {
	Config *config.Config
}

// renderTickMsg flushes a redraw that was held back by the frame limiter.
type renderTickMsg struct{}

// noticeExpiredMsg clears a transient status-bar notice.
type noticeExpiredMsg struct {
	id int
}
