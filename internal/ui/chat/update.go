// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/sladenchat-tui/internal/auth"
	"github.com/jeranaias/sladenchat-tui/internal/i18n"
	"github.com/jeranaias/sladenchat-tui/internal/model"
	"github.com/jeranaias/sladenchat-tui/internal/querymode"
	"github.com/jeranaias/sladenchat-tui/internal/session"
	"github.com/jeranaias/sladenchat-tui/internal/util"
)

// Init starts cursor blink and the first backend checks.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.checkAuthStatus()}
	if m.healthInterval > 0 {
		cmds = append(cmds, m.checkHealth())
	}
	if m.session.Sending() {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.follow = m.viewport.AtBottom()
		return m, cmd

	case ControllerEventMsg:
		return m.handleEvent(msg.Event)

	case submitDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, session.ErrEmptyQuery) {
			return m, m.notify(m.describeSubmitError(msg.err))
		}
		return m, nil

	case modeSelectedMsg:
		if msg.err != nil {
			m.refresh()
			if !errors.Is(msg.err, querymode.ErrInvalidMode) {
				return m, m.notify(msg.err.Error())
			}
			return m, nil
		}
		m.syncMode()
		m.refresh()
		return m, nil

	case clearDoneMsg:
		if msg.err != nil {
			return m, m.notify(msg.err.Error())
		}
		return m, m.notify(m.printer.T(i18n.KeyCleared))

	case renderTickMsg:
		m.renderPending = false
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.session.Sending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case healthTickMsg:
		return m, m.checkHealth()

	case healthMsg:
		return m.handleHealth(msg)

	case authStatusMsg:
		m.handleAuthStatus(msg)
		return m, nil

	case ConfigChangedMsg:
		if msg.Config != nil {
			m.showSuggestions = msg.Config.UI.ShowSuggestions
		}
		m.syncMode()
		m.refresh()
		return m, nil

	case noticeExpiredMsg:
		if msg.id == m.noticeID {
			m.statusBar.Notice = ""
		}
		return m, nil
	}

	return m, nil
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.picker.Visible() {
		if handled, cmd := m.handlePickerKey(msg); handled {
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit(m.input.Value())

	case key.Matches(msg, m.keys.Clear):
		return m, m.clearHistory()

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyLastAnswer()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		m.follow = m.viewport.AtBottom()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		m.follow = m.viewport.AtBottom()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		m.follow = m.viewport.AtBottom()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		m.follow = true
		return m, nil
	}

	// Digits fill the input with a starter question while the chat and input
	// are empty. Enter sends it.
	if m.showSuggestions && m.input.Value() == "" && msg.Type == tea.KeyRunes && len(m.session.Snapshot()) == 0 {
		if q, ok := m.suggestions.Pick(string(msg.Runes)); ok {
			m.input.SetValue(q)
			m.afterInputChange()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.afterInputChange()
	return m, cmd
}

// handlePickerKey handles navigation inside the open picker. Keys it does not
// claim fall through to the input so the filter can be typed.
func (m *Model) handlePickerKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.PickerUp):
		m.picker.Up()
		return true, nil

	case key.Matches(msg, m.keys.PickerDown):
		m.picker.Down()
		return true, nil

	case key.Matches(msg, m.keys.PickerClose):
		m.closePicker()
		return true, nil

	case key.Matches(msg, m.keys.PickerAccept):
		mode, ok := m.picker.Selected()
		if !ok {
			// Let the controller report the unknown mode under the input.
			return true, m.selectMode(strings.TrimPrefix(m.input.Value(), "/"))
		}
		m.closePicker()
		return true, m.selectMode(string(mode))
	}
	return false, nil
}

// afterInputChange opens, filters or closes the picker from the input text.
func (m *Model) afterInputChange() {
	value := m.input.Value()
	switch {
	case strings.HasPrefix(value, "/") && !strings.ContainsAny(value, " \n"):
		if !m.picker.Visible() {
			m.picker.Show(m.session.CurrentMode())
		}
		m.picker.SetFilter(value[1:])
		m.layout()
		m.refresh()
	case m.picker.Visible():
		m.picker.Hide()
		m.layout()
		m.refresh()
	}
}

func (m *Model) closePicker() {
	m.picker.Hide()
	m.input.Reset()
	m.layout()
	m.refresh()
}

// =============================================================================
// ACTIONS
// =============================================================================

// submit hands text to the controller on a separate goroutine. The input is
// cleared by the controller's InputCleared event, not here, so a rejected
// submit keeps what the user typed.
func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	if m.session.Sending() {
		return m, m.notify(m.printer.T(i18n.KeyBusy))
	}

	m.follow = true
	s := m.session
	ctx := m.ctx
	return m, func() tea.Msg {
		return submitDoneMsg{err: s.Submit(ctx, text)}
	}
}

// selectMode runs SelectMode off the update loop. The controller emits its
// events through the program, which cannot receive while Update is running.
func (m Model) selectMode(name string) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		return modeSelectedMsg{err: s.SelectMode(name)}
	}
}

func (m Model) clearHistory() tea.Cmd {
	s := m.session
	ctx := m.ctx
	return func() tea.Msg {
		return clearDoneMsg{err: s.ClearHistory(ctx)}
	}
}

func (m *Model) copyLastAnswer() tea.Cmd {
	msg, ok := model.LastAssistant(m.session.Snapshot())
	if !ok || m.clipboard == nil {
		return nil
	}
	if err := m.clipboard(msg.Content); err != nil {
		m.logger.Warn("clipboard write failed", zap.Error(err))
		return m.notify(err.Error())
	}
	return m.notify(m.printer.T(i18n.KeyCopied))
}

func (m Model) describeSubmitError(err error) string {
	if errors.Is(err, session.ErrBusy) {
		return m.printer.T(i18n.KeyBusy)
	}
	return err.Error()
}

// notify shows text in the status bar for noticeDuration.
func (m *Model) notify(text string) tea.Cmd {
	m.noticeID++
	id := m.noticeID
	m.statusBar.Notice = util.FirstLine(text)
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

// =============================================================================
// CONTROLLER EVENTS
// =============================================================================

func (m Model) handleEvent(ev session.Event) (tea.Model, tea.Cmd) {
	switch ev.Kind {
	case session.EventMessagesChanged, session.EventScroll:
		return m, m.requestRender()

	case session.EventInputCleared:
		m.input.Reset()
		m.afterInputChange()
		return m, nil

	case session.EventSendingChanged:
		m.refresh()
		if m.session.Sending() {
			return m, m.spinner.Tick
		}
		return m, nil

	case session.EventTurnFinished:
		m.renderPending = false
		m.refresh()
		return m, nil

	case session.EventCleared:
		m.follow = true
		m.refresh()
		return m, nil

	case session.EventModeChanged:
		m.syncMode()
		return m, m.notify(m.printer.T(i18n.KeyModeChanged, m.session.CurrentMode().Label()))

	case session.EventInputError:
		m.refresh()
		return m, nil

	case session.EventClearedElsewhere:
		m.follow = true
		m.refresh()
		return m, m.notify(m.printer.T(i18n.KeyClearedElsewhere))

	case session.EventPersistFailed:
		if ev.Err != nil {
			return m, m.notify(ev.Err.Error())
		}
	}
	return m, nil
}

// requestRender redraws now when the frame limiter allows it, otherwise
// schedules one redraw for when it will.
func (m *Model) requestRender() tea.Cmd {
	if m.limiter.Allow() {
		m.refresh()
		return nil
	}
	if m.renderPending {
		return nil
	}
	m.renderPending = true
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return renderTickMsg{}
	})
}

// =============================================================================
// BACKEND STATUS
// =============================================================================

func (m Model) checkHealth() tea.Cmd {
	if m.status == nil {
		return nil
	}
	status := m.status
	ctx := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		h, err := status.Health(ctx)
		return healthMsg{status: h, err: err}
	}
}

func (m Model) checkAuthStatus() tea.Cmd {
	if m.status == nil {
		return nil
	}
	status := m.status
	ctx := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		a, err := status.AuthStatus(ctx)
		return authStatusMsg{status: a, err: err}
	}
}

func (m Model) handleHealth(msg healthMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.statusBar.Connected = false
		m.statusBar.BackendMessage = msg.err.Error()
		m.logger.Debug("health check failed", zap.Error(msg.err))
	} else {
		m.statusBar.Connected = msg.status.Healthy()
		m.statusBar.BackendMessage = msg.status.Summary()
	}

	if m.healthInterval <= 0 {
		return m, nil
	}
	return m, tea.Tick(m.healthInterval, func(time.Time) tea.Msg {
		return healthTickMsg{}
	})
}

func (m *Model) handleAuthStatus(msg authStatusMsg) {
	if msg.err != nil {
		m.logger.Debug("auth status check failed", zap.Error(msg.err))
		return
	}
	m.header.Version = msg.status.VersionDisplay()

	token := m.status.Token()
	if token == "" {
		token = msg.status.AccessToken
	}
	id := auth.Describe(token, msg.status.GuestMode(), time.Now())
	m.header.Username = id.Username
	m.header.GuestLabel = ""
	if id.Guest {
		m.header.GuestLabel = m.printer.T(i18n.KeyGuestMode)
	}
	m.layout()
	m.refresh()
}
