// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/jeranaias/sladenchat-tui/internal/i18n"
	"github.com/jeranaias/sladenchat-tui/internal/lightrag"
	"github.com/jeranaias/sladenchat-tui/internal/model"
	"github.com/jeranaias/sladenchat-tui/internal/querymode"
	"github.com/jeranaias/sladenchat-tui/internal/session"
	"github.com/jeranaias/sladenchat-tui/internal/storage"
	"github.com/jeranaias/sladenchat-tui/internal/ui/components"
	"github.com/jeranaias/sladenchat-tui/internal/ui/styles"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeSession struct {
	mu         sync.Mutex
	messages   []model.Message
	sending    bool
	mode       querymode.Mode
	inputError string
	submitted  []string
	selected   []string
	cleared    int
}

func (f *fakeSession) Submit(ctx context.Context, raw string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, raw)
	return nil
}

func (f *fakeSession) ClearHistory(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
	f.messages = nil
	return nil
}

func (f *fakeSession) SelectMode(mode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = append(f.selected, mode)
	m, err := querymode.Parse(mode)
	if err != nil {
		f.inputError = "unknown mode " + mode
		return err
	}
	f.mode = m
	f.inputError = ""
	return nil
}

func (f *fakeSession) Snapshot() []model.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return model.Clone(f.messages)
}

func (f *fakeSession) Sending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sending
}

func (f *fakeSession) InputError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inputError
}

func (f *fakeSession) CurrentMode() querymode.Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

type fakeStatus struct {
	token string
}

func (f *fakeStatus) Health(ctx context.Context) (*lightrag.HealthStatus, error) {
	return &lightrag.HealthStatus{Status: "healthy"}, nil
}

func (f *fakeStatus) AuthStatus(ctx context.Context) (*lightrag.AuthStatus, error) {
	return &lightrag.AuthStatus{}, nil
}

func (f *fakeStatus) Token() string { return f.token }

func newTestModel(t *testing.T, s *fakeSession) Model {
	t.Helper()
	if s.mode == "" {
		s.mode = querymode.ModeMix
	}
	m := New(context.Background(), Options{
		Session:         s,
		Status:          &fakeStatus{},
		Theme:           styles.NewTheme(styles.ThemeDark),
		Printer:         i18n.New("en"),
		ShowSuggestions: true,
	})
	return update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m = update(t, m, runes(string(r)))
	}
	return m
}

func conversation(turns int) []model.Message {
	var msgs []model.Message
	for i := 0; i < turns; i++ {
		reply := model.NewAssistantMessage()
		reply.AppendContent("answer line one\nanswer line two\nanswer line three")
		msgs = append(msgs, model.NewUserMessage("question"), reply)
	}
	return msgs
}

// =============================================================================
// MODE PICKER TESTS
// =============================================================================

func TestSlashOpensPicker(t *testing.T) {
	m := newTestModel(t, &fakeSession{})

	m = update(t, m, runes("/"))
	if !m.PickerVisible() {
		t.Fatal("typing / should open the mode picker")
	}
	if !strings.Contains(ansi.Strip(m.View()), "Query Mode") {
		t.Error("picker title should be rendered")
	}
}

func TestPickerSelectsFilteredMode(t *testing.T) {
	s := &fakeSession{}
	m := newTestModel(t, s)

	m = typeText(t, m, "/hy")
	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(s.selected) != 0 {
		t.Fatal("mode should be selected by the returned command, not inside Update")
	}
	if cmd == nil {
		t.Fatal("enter in the picker should return a command")
	}
	m = update(t, m, cmd())

	if len(s.selected) != 1 || s.selected[0] != "hybrid" {
		t.Fatalf("selected = %v, want [hybrid]", s.selected)
	}
	if m.PickerVisible() {
		t.Error("picker should close after selection")
	}
	if m.InputValue() != "" {
		t.Errorf("input should be cleared, got %q", m.InputValue())
	}
	if len(s.submitted) != 0 {
		t.Error("selecting a mode must not submit a query")
	}
	if m.statusBar.Mode != querymode.ModeHybrid {
		t.Errorf("status bar mode = %q, want hybrid", m.statusBar.Mode)
	}
}

func TestPickerUnknownModeReportsError(t *testing.T) {
	s := &fakeSession{}
	m := newTestModel(t, s)

	m = typeText(t, m, "/zzz")
	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter in the picker should return a command")
	}
	m = update(t, m, cmd())

	if s.mode != querymode.ModeMix {
		t.Errorf("mode changed to %q on an unknown name", s.mode)
	}
	if !strings.Contains(ansi.Strip(m.View()), "unknown mode zzz") {
		t.Error("input error should be shown")
	}
}

func TestPickerEscCloses(t *testing.T) {
	m := newTestModel(t, &fakeSession{})
	m = update(t, m, runes("/"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.PickerVisible() {
		t.Error("esc should close the picker")
	}
}

// =============================================================================
// SCROLL TESTS
// =============================================================================

func TestManualScrollUpSuppressesFollow(t *testing.T) {
	s := &fakeSession{messages: conversation(20)}
	m := newTestModel(t, s)

	if !m.Following() || !m.viewport.AtBottom() {
		t.Fatal("transcript should start pinned to the bottom")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyPgUp})
	if m.Following() {
		t.Fatal("scrolling up should stop following")
	}

	s.mu.Lock()
	s.messages[len(s.messages)-1].AppendContent("\nmore streamed text")
	s.mu.Unlock()
	m = update(t, m, ControllerEventMsg{Event: session.Event{Kind: session.EventScroll}})

	if m.viewport.AtBottom() {
		t.Error("new content must not pull the view down while the user reads history")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlEnd})
	if !m.Following() {
		t.Error("returning to the bottom should resume following")
	}
}

func TestSubmitResumesFollow(t *testing.T) {
	s := &fakeSession{messages: conversation(20)}
	m := newTestModel(t, s)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyPgUp})

	m.input.SetValue("next question")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if !m.Following() {
		t.Error("sending should pin the transcript again")
	}
}

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestEnterSubmits(t *testing.T) {
	s := &fakeSession{}
	m := newTestModel(t, s)
	m.input.SetValue("  what is this?  ")

	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should return a submit command")
	}
	if msg, ok := cmd().(submitDoneMsg); !ok || msg.err != nil {
		t.Fatalf("unexpected result %#v", msg)
	}
	if len(s.submitted) != 1 || s.submitted[0] != "  what is this?  " {
		t.Errorf("submitted = %q", s.submitted)
	}
	if m.InputValue() == "" {
		t.Error("input is cleared by the controller event, not by enter")
	}

	m = update(t, m, ControllerEventMsg{Event: session.Event{Kind: session.EventInputCleared}})
	if m.InputValue() != "" {
		t.Errorf("InputCleared should empty the input, got %q", m.InputValue())
	}
}

func TestEnterWhileSendingIsRejected(t *testing.T) {
	s := &fakeSession{sending: true}
	m := newTestModel(t, s)
	m.input.SetValue("second")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(s.submitted) != 0 {
		t.Error("a submit while sending must not reach the controller")
	}
	if !strings.Contains(ansi.Strip(m.View()), "Still answering") {
		t.Error("busy notice should be shown")
	}
}

func TestEmptyEnterDoesNothing(t *testing.T) {
	s := &fakeSession{}
	m := newTestModel(t, s)
	m.input.SetValue("   ")

	_, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("whitespace input should not produce a command")
	}
}

func TestSuggestionDigitFillsInput(t *testing.T) {
	s := &fakeSession{}
	m := newTestModel(t, s)

	if !strings.Contains(ansi.Strip(m.View()), components.DefaultSuggestions[0]) {
		t.Fatal("empty chat should list suggestions")
	}

	m, cmd := updateCmd(t, m, runes("2"))
	if cmd != nil {
		cmd()
	}
	if len(s.submitted) != 0 {
		t.Fatalf("digit should not submit, submitted = %q", s.submitted)
	}
	if m.InputValue() != components.DefaultSuggestions[1] {
		t.Fatalf("input = %q, want %q", m.InputValue(), components.DefaultSuggestions[1])
	}

	_, cmd = updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should submit the filled suggestion")
	}
	cmd()
	if len(s.submitted) != 1 || s.submitted[0] != components.DefaultSuggestions[1] {
		t.Errorf("submitted = %q", s.submitted)
	}
}

func TestThinkingIndicator(t *testing.T) {
	s := &fakeSession{
		messages: []model.Message{model.NewUserMessage("q"), model.NewAssistantMessage()},
		sending:  true,
	}
	m := newTestModel(t, s)

	if !strings.Contains(ansi.Strip(m.View()), "Thinking...") {
		t.Error("an empty reply while sending should show the thinking line")
	}
}

// =============================================================================
// ACTION TESTS
// =============================================================================

func TestCopyLastAnswer(t *testing.T) {
	s := &fakeSession{messages: conversation(1)}
	var copied string
	m := New(context.Background(), Options{
		Session:   s,
		Theme:     styles.NewTheme(styles.ThemeDark),
		Clipboard: func(text string) error { copied = text; return nil },
	})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	if copied != s.messages[1].Content {
		t.Errorf("copied %q", copied)
	}
	if !strings.Contains(ansi.Strip(m.View()), "Copied") {
		t.Error("copy notice should be shown")
	}
}

func TestCopyFailureShowsNotice(t *testing.T) {
	s := &fakeSession{messages: conversation(1), mode: querymode.ModeMix}
	m := New(context.Background(), Options{
		Session:   s,
		Theme:     styles.NewTheme(styles.ThemeDark),
		Clipboard: func(string) error { return errors.New("no clipboard") },
	})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	if !strings.Contains(ansi.Strip(m.View()), "no clipboard") {
		t.Error("clipboard error should be shown")
	}
}

func TestClearKey(t *testing.T) {
	s := &fakeSession{messages: conversation(2)}
	m := newTestModel(t, s)

	_, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	if cmd == nil {
		t.Fatal("ctrl+l should return a clear command")
	}
	if _, ok := cmd().(clearDoneMsg); !ok {
		t.Fatal("clear command should report completion")
	}
	if s.cleared != 1 {
		t.Errorf("ClearHistory called %d times", s.cleared)
	}
}

// =============================================================================
// STATUS TESTS
// =============================================================================

func TestHealthUpdatesStatusBar(t *testing.T) {
	m := newTestModel(t, &fakeSession{})

	m = update(t, m, healthMsg{status: &lightrag.HealthStatus{Status: "healthy"}})
	if !m.statusBar.Connected {
		t.Error("healthy backend should show connected")
	}

	m = update(t, m, healthMsg{err: errors.New("connection refused")})
	if m.statusBar.Connected {
		t.Error("failed check should show disconnected")
	}
}

func TestAuthStatusGuestBadge(t *testing.T) {
	m := newTestModel(t, &fakeSession{})

	m = update(t, m, authStatusMsg{status: &lightrag.AuthStatus{
		AuthConfigured: false,
		CoreVersion:    "1.4.0",
		APIVersion:     "0204",
	}})

	out := ansi.Strip(m.View())
	if !strings.Contains(out, "Guest Mode") {
		t.Error("guest badge should be shown")
	}
	if !strings.Contains(out, "1.4.0/0204") {
		t.Error("version should be shown")
	}
}

func TestModeChangedUpdatesPlaceholder(t *testing.T) {
	s := &fakeSession{}
	m := newTestModel(t, s)

	s.mode = querymode.ModeLocal
	m = update(t, m, ControllerEventMsg{Event: session.Event{Kind: session.EventModeChanged}})

	if m.statusBar.Mode != querymode.ModeLocal {
		t.Errorf("status bar mode = %q, want local", m.statusBar.Mode)
	}
	if !strings.Contains(m.input.Placeholder, "Local") {
		t.Errorf("placeholder = %q", m.input.Placeholder)
	}
}

func TestClearedElsewhereShowsNotice(t *testing.T) {
	s := &fakeSession{messages: conversation(1)}
	m := newTestModel(t, s)
	m.follow = false

	s.messages = nil
	m, cmd := updateCmd(t, m, ControllerEventMsg{Event: session.Event{Kind: session.EventClearedElsewhere}})
	if cmd == nil {
		t.Fatal("notice should schedule its expiry")
	}
	if !m.follow {
		t.Error("view should follow the bottom again")
	}
	if !strings.Contains(m.statusBar.Notice, "cleared in another window") {
		t.Errorf("notice = %q", m.statusBar.Notice)
	}
}

// =============================================================================
// PROGRAM TESTS
// =============================================================================

type stubBackend struct{}

func (stubBackend) QueryText(ctx context.Context, req *lightrag.QueryRequest) (*lightrag.QueryResponse, error) {
	return &lightrag.QueryResponse{Response: "ok"}, nil
}

func (stubBackend) QueryTextStream(ctx context.Context, req *lightrag.QueryRequest, onChunk, onError func(string)) error {
	onChunk("ok")
	return nil
}

// TestPickerSelectionInRunningProgram drives a real controller through a
// running program, with controller events delivered by p.Send as Run does.
func TestPickerSelectionInRunningProgram(t *testing.T) {
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "conversation.json"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	ctrl, err := session.New(session.Options{
		Backend: stubBackend{},
		Store:   store,
		Modes:   querymode.NewSelector(querymode.ModeMix, nil),
	})
	if err != nil {
		t.Fatalf("Failed to create controller: %v", err)
	}
	defer ctrl.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := New(ctx, Options{
		Session: ctrl,
		Status:  &fakeStatus{},
		Theme:   styles.NewTheme(styles.ThemeDark),
		Printer: i18n.New("en"),
	})
	p := tea.NewProgram(m,
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)
	unsubscribe := ctrl.Subscribe(func(ev session.Event) {
		p.Send(ControllerEventMsg{Event: ev})
	})
	defer unsubscribe()

	done := make(chan error, 1)
	go func() {
		_, err := p.Run()
		done <- err
	}()

	go func() {
		p.Send(tea.WindowSizeMsg{Width: 80, Height: 24})
		p.Send(runes("/hybrid"))
		p.Send(tea.KeyMsg{Type: tea.KeyEnter})
		deadline := time.Now().Add(2 * time.Second)
		for ctrl.CurrentMode() != querymode.ModeHybrid && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		// A loop still blocked inside Update never takes this.
		p.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("program exited with error: %v", err)
		}
	case <-time.After(5 * time.Second):
		p.Kill()
		t.Fatal("program stopped responding after a mode was picked")
	}

	if ctrl.CurrentMode() != querymode.ModeHybrid {
		t.Errorf("mode = %q, want hybrid", ctrl.CurrentMode())
	}
}
