// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/sladenchat-tui/internal/i18n"
	"github.com/jeranaias/sladenchat-tui/internal/lightrag"
	"github.com/jeranaias/sladenchat-tui/internal/logging"
	"github.com/jeranaias/sladenchat-tui/internal/model"
	"github.com/jeranaias/sladenchat-tui/internal/querymode"
	"github.com/jeranaias/sladenchat-tui/internal/render"
	"github.com/jeranaias/sladenchat-tui/internal/ui/components"
	"github.com/jeranaias/sladenchat-tui/internal/ui/styles"
)

// frameInterval caps redraws while a reply streams in.
const frameInterval = time.Second / 30

// noticeDuration is how long a status-bar notice stays up.
const noticeDuration = 3 * time.Second

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Session is the part of the session controller the view drives.
// *session.Controller satisfies it.
type Session interface {
	Submit(ctx context.Context, raw string) error
	ClearHistory(ctx context.Context) error
	SelectMode(mode string) error
	Snapshot() []model.Message
	Sending() bool
	InputError() string
	CurrentMode() querymode.Mode
}

// StatusSource answers backend health and auth questions.
// *lightrag.Client satisfies it.
type StatusSource interface {
	Health(ctx context.Context) (*lightrag.HealthStatus, error)
	AuthStatus(ctx context.Context) (*lightrag.AuthStatus, error)
	Token() string
}

// Options configures the chat model.
type Options struct {
	Session  Session
	Status   StatusSource
	Theme    *styles.Theme
	Renderer *render.Renderer
	Printer  *i18n.Printer
	Logger   *zap.Logger

	// HealthInterval between backend checks; zero disables polling.
	HealthInterval time.Duration

	ShowSuggestions bool

	// Clipboard writes text to the system clipboard. Tests replace it.
	Clipboard func(string) error
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat view.
type Model struct {
	ctx      context.Context
	session  Session
	status   StatusSource
	theme    *styles.Theme
	renderer *render.Renderer
	printer  *i18n.Printer
	logger   *zap.Logger
	keys     KeyMap

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model

	header      *components.Header
	statusBar   *components.StatusBar
	picker      *components.ModePicker
	suggestions *components.Suggestions

	width  int
	height int
	ready  bool

	// follow keeps the transcript pinned to the newest content.
	follow bool

	limiter       *rate.Limiter
	renderPending bool

	healthInterval  time.Duration
	showSuggestions bool
	clipboard       func(string) error

	noticeID int
	quitting bool
}

// New creates the chat model.
func New(ctx context.Context, opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme(styles.ThemeSystem)
	}
	if opts.Printer == nil {
		opts.Printer = i18n.New("en")
	}
	t := opts.Theme
	p := opts.Printer

	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.Prompt = "> "
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Focus()

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = t.Spinner

	header := components.NewHeader(t)
	statusBar := components.NewStatusBar(t)
	statusBar.ConnectedText = p.T(i18n.KeyConnected)
	statusBar.Disconnected = p.T(i18n.KeyDisconnected)

	picker := components.NewModePicker(t)
	picker.Title = p.T(i18n.KeyModePickerTitle)

	suggestions := components.NewSuggestions(t)
	suggestions.Prompt = p.T(i18n.KeyStartPrompt)
	suggestions.Heading = p.T(i18n.KeySuggestions)

	m := Model{
		ctx:             ctx,
		session:         opts.Session,
		status:          opts.Status,
		theme:           t,
		renderer:        opts.Renderer,
		printer:         p,
		logger:          logging.OrNop(opts.Logger).Named("tui"),
		keys:            DefaultKeyMap(),
		viewport:        vp,
		input:           ta,
		spinner:         sp,
		header:          header,
		statusBar:       statusBar,
		picker:          picker,
		suggestions:     suggestions,
		width:           80,
		height:          24,
		follow:          true,
		limiter:         rate.NewLimiter(rate.Every(frameInterval), 1),
		healthInterval:  opts.HealthInterval,
		showSuggestions: opts.ShowSuggestions,
		clipboard:       opts.Clipboard,
	}
	m.syncMode()
	m.layout()
	m.refresh()
	return m
}

// Following reports whether the transcript is pinned to the bottom.
func (m Model) Following() bool {
	return m.follow
}

// PickerVisible reports whether the mode picker is open.
func (m Model) PickerVisible() bool {
	return m.picker.Visible()
}

// InputValue returns the current input text.
func (m Model) InputValue() string {
	return m.input.Value()
}

// =============================================================================
// LAYOUT
// =============================================================================

// layout sizes every component from the window size. The transcript takes
// whatever the fixed rows leave.
func (m *Model) layout() {
	m.header.Width = m.width
	m.statusBar.Width = m.width
	m.picker.Width = m.width - 4
	m.suggestions.Width = m.width

	m.input.SetWidth(m.width - m.theme.InputContainer.GetHorizontalFrameSize())

	fixed := lipgloss.Height(m.header.View()) +
		lipgloss.Height(m.statusBar.View()) +
		m.input.Height() + m.theme.InputContainer.GetVerticalFrameSize() +
		1 // input error line
	if m.picker.Visible() {
		fixed += lipgloss.Height(m.picker.View())
	}

	vpHeight := m.height - fixed
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = m.width
	m.viewport.Height = vpHeight
	m.suggestions.Height = vpHeight

	if m.renderer != nil {
		if err := m.renderer.SetWidth(m.width - 4); err != nil {
			m.logger.Warn("failed to resize markdown renderer", zap.Error(err))
		}
	}
}

// syncMode copies the current query mode into the input placeholder and
// status bar.
func (m *Model) syncMode() {
	mode := m.session.CurrentMode()
	m.statusBar.Mode = mode
	m.input.Placeholder = m.printer.T(i18n.KeyPlaceholder, mode.Label())
}
