// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/sladenchat-tui/internal/i18n"
	"github.com/jeranaias/sladenchat-tui/internal/lightrag"
	"github.com/jeranaias/sladenchat-tui/internal/logging"
	"github.com/jeranaias/sladenchat-tui/internal/model"
	"github.com/jeranaias/sladenchat-tui/internal/querymode"
	"github.com/jeranaias/sladenchat-tui/internal/storage"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyQuery: the input was empty after trimming. Nothing changed.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrBusy: a turn is already in flight. Nothing changed.
	ErrBusy = errors.New("a query is already in progress")

	// ErrClosed: the controller was closed.
	ErrClosed = errors.New("session controller is closed")
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Backend performs the network calls. *lightrag.Client satisfies it.
type Backend interface {
	QueryText(ctx context.Context, req *lightrag.QueryRequest) (*lightrag.QueryResponse, error)
	QueryTextStream(ctx context.Context, req *lightrag.QueryRequest, onChunk, onError func(string)) error
}

// Settings are the per-turn request settings, read at the start of each turn.
type Settings struct {
	HistoryTurns int
	Stream       bool
	Passthrough  lightrag.Passthrough
}

// DefaultSettings mirrors the web UI defaults.
func DefaultSettings() Settings {
	return Settings{HistoryTurns: 3, Stream: true}
}

// Options configures a Controller. Backend, Store and Modes are required.
type Options struct {
	Backend  Backend
	Store    storage.ConversationStore
	Modes    *querymode.Selector
	Settings func() Settings
	Printer  *i18n.Printer
	Logger   *zap.Logger
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller is the single writer of the conversation. Views read snapshots
// and subscribe to events; they never mutate messages directly.
type Controller struct {
	backend  Backend
	store    storage.ConversationStore
	modes    *querymode.Selector
	settings func() Settings
	printer  *i18n.Printer
	logger   *zap.Logger

	mu         sync.Mutex
	messages   []model.Message
	sending    bool
	inputError string
	generation uint64
	closed     bool

	listenersMu sync.RWMutex
	listeners   map[int]Listener
	nextID      int

	// persistMu orders store writes so a clear and a finishing turn reach
	// the store in the order they happened here.
	persistMu sync.Mutex
}

// New creates a controller and restores the persisted conversation.
func New(opts Options) (*Controller, error) {
	if opts.Backend == nil || opts.Store == nil || opts.Modes == nil {
		return nil, errors.New("session: backend, store and modes are required")
	}
	if opts.Settings == nil {
		opts.Settings = DefaultSettings
	}
	if opts.Printer == nil {
		opts.Printer = i18n.New("en")
	}

	c := &Controller{
		backend:   opts.Backend,
		store:     opts.Store,
		modes:     opts.Modes,
		settings:  opts.Settings,
		printer:   opts.Printer,
		logger:    logging.OrNop(opts.Logger).Named("session"),
		messages:  []model.Message{},
		listeners: make(map[int]Listener),
	}

	rec, err := opts.Store.Load(context.Background())
	switch {
	case err == nil:
		c.messages = model.Clone(rec.Messages)
		c.generation = rec.Generation
	case errors.Is(err, storage.ErrCorrupt):
		// Start fresh; the next save replaces the unreadable data.
		c.logger.Warn("stored conversation unreadable, starting empty", zap.Error(err))
	default:
		return nil, err
	}

	c.logger.Info("session restored",
		zap.Int("messages", len(c.messages)),
		zap.Uint64("generation", c.generation))
	return c, nil
}

// =============================================================================
// READ ACCESS
// =============================================================================

// Snapshot returns a copy of the conversation.
func (c *Controller) Snapshot() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.Clone(c.messages)
}

// Sending reports whether a turn is in flight.
func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// InputError returns the message to show under the input, if any.
func (c *Controller) InputError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inputError
}

// CurrentMode returns the mode the next query will use.
func (c *Controller) CurrentMode() querymode.Mode {
	return c.modes.Current()
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit runs one turn for raw. It blocks until the turn is final.
//
// It returns ErrEmptyQuery or ErrBusy (or ErrClosed) when the input is
// rejected, in which case nothing changed. Otherwise it returns nil: backend
// failures are recorded on the assistant message instead.
func (c *Controller) Submit(ctx context.Context, raw string) error {
	query := strings.TrimSpace(raw)
	if query == "" {
		return ErrEmptyQuery
	}
	settings := c.settings()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.sending {
		c.mu.Unlock()
		return ErrBusy
	}

	history := model.HistoryWindow(c.messages, settings.HistoryTurns)
	user := model.NewUserMessage(raw)
	reply := model.NewAssistantMessage()
	c.messages = append(c.messages, user, reply)
	c.sending = true
	hadInputError := c.inputError != ""
	c.inputError = ""
	gen := c.generation
	c.mu.Unlock()

	if hadInputError {
		c.emit(Event{Kind: EventInputError})
	}
	c.emit(Event{Kind: EventMessagesChanged})
	c.emit(Event{Kind: EventSendingChanged})
	c.emit(Event{Kind: EventScroll})
	c.emit(Event{Kind: EventInputCleared})

	req := &lightrag.QueryRequest{
		Query:               query,
		Mode:                c.modes.Current(),
		ConversationHistory: history,
		Stream:              settings.Stream,
		HistoryTurns:        settings.HistoryTurns,
	}
	settings.Passthrough.Apply(req)

	c.logger.Info("turn started",
		zap.String("mode", req.Mode.String()),
		zap.Bool("stream", req.Stream),
		zap.Int("history", len(history)))

	content, isError, turnErr := c.dispatch(ctx, reply.ID, req)
	c.finish(gen, reply.ID, content, isError, turnErr)
	return nil
}

// dispatch calls the backend and returns the final content for the reply.
func (c *Controller) dispatch(ctx context.Context, replyID string, req *lightrag.QueryRequest) (string, bool, error) {
	if req.Stream {
		var (
			errMu     sync.Mutex
			fragments []string
		)
		err := c.backend.QueryTextStream(ctx, req,
			func(chunk string) { c.appendChunk(replyID, chunk) },
			func(fragment string) {
				errMu.Lock()
				fragments = append(fragments, fragment)
				errMu.Unlock()
			})
		if err != nil {
			return c.failureText(err), true, err
		}

		partial := c.contentOf(replyID)
		if len(fragments) == 0 {
			return partial, false, nil
		}
		streamErr := strings.Join(fragments, "")
		if partial != "" {
			return partial + "\n" + streamErr, true, errors.New(streamErr)
		}
		return streamErr, true, errors.New(streamErr)
	}

	resp, err := c.backend.QueryText(ctx, req)
	if err != nil {
		return c.failureText(err), true, err
	}
	return resp.Response, false, nil
}

// failureText is the assistant content for a failed call.
func (c *Controller) failureText(err error) string {
	return c.printer.T(i18n.KeyRetrievalError) + "\n" + err.Error()
}

// appendChunk applies one streamed chunk. Chunks arrive from the backend's
// reader one at a time, so the append order is the delivery order.
func (c *Controller) appendChunk(replyID, chunk string) {
	c.mu.Lock()
	i := c.indexOf(replyID)
	if i < 0 || c.closed {
		c.mu.Unlock()
		return
	}
	c.messages[i].AppendContent(chunk)
	c.mu.Unlock()

	c.emit(Event{Kind: EventMessagesChanged})
	c.emit(Event{Kind: EventScroll})
}

func (c *Controller) contentOf(replyID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(replyID); i >= 0 {
		return c.messages[i].Content
	}
	return ""
}

// finish finalizes the reply, returns the controller to ready and saves.
func (c *Controller) finish(gen uint64, replyID, content string, isError bool, turnErr error) {
	c.mu.Lock()
	if i := c.indexOf(replyID); i >= 0 {
		c.messages[i].Content = content
		c.messages[i].IsError = isError
	}
	c.sending = false
	snapshot := model.Clone(c.messages)
	c.mu.Unlock()

	if turnErr != nil {
		c.logger.Warn("turn failed", zap.Error(turnErr))
	} else {
		c.logger.Info("turn finished", zap.Int("length", len(content)))
	}

	c.emit(Event{Kind: EventMessagesChanged})
	c.emit(Event{Kind: EventSendingChanged})
	c.emit(Event{Kind: EventTurnFinished, Err: turnErr})

	c.persist(gen, snapshot)
}

// indexOf finds a message by ID, searching from the end. Callers hold c.mu.
func (c *Controller) indexOf(id string) int {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// CLEAR & MODE
// =============================================================================

// ClearHistory empties the conversation and saves the empty list under a new
// generation. A turn still in flight keeps running, but its eventual save
// carries the old generation and is refused.
func (c *Controller) ClearHistory(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.messages = []model.Message{}
	c.generation++
	gen := c.generation
	c.inputError = ""
	c.mu.Unlock()

	c.logger.Info("history cleared", zap.Uint64("generation", gen))
	c.emit(Event{Kind: EventMessagesChanged})
	c.emit(Event{Kind: EventCleared})

	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	if err := c.store.Save(ctx, &storage.Record{Generation: gen, Messages: []model.Message{}}); err != nil {
		c.logger.Error("failed to save cleared history", zap.Error(err))
		c.emit(Event{Kind: EventPersistFailed, Err: err})
		return err
	}
	return nil
}

// SelectMode makes mode current for future queries. An unknown mode leaves
// the current one unchanged, sets InputError and returns ErrInvalidMode.
func (c *Controller) SelectMode(mode string) error {
	if err := c.modes.Select(mode); err != nil {
		c.mu.Lock()
		if errors.Is(err, querymode.ErrInvalidMode) {
			c.inputError = c.printer.T(i18n.KeyInvalidMode, mode)
		} else {
			c.inputError = err.Error()
		}
		c.mu.Unlock()
		c.emit(Event{Kind: EventInputError})
		return err
	}

	c.mu.Lock()
	hadInputError := c.inputError != ""
	c.inputError = ""
	c.mu.Unlock()

	if hadInputError {
		c.emit(Event{Kind: EventInputError})
	}
	c.logger.Info("query mode selected", zap.String("mode", c.modes.Current().String()))
	c.emit(Event{Kind: EventModeChanged})
	return nil
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// persist saves messages as of generation gen. A stale refusal means the
// history was cleared after this turn began, here or by another process
// sharing the store. In the latter case the stored state is adopted.
func (c *Controller) persist(gen uint64, messages []model.Message) {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	ctx := context.Background()
	err := c.store.Save(ctx, &storage.Record{Generation: gen, Messages: messages})
	if err == nil {
		return
	}

	if !errors.Is(err, storage.ErrStaleGeneration) {
		c.logger.Error("failed to save conversation", zap.Error(err))
		c.emit(Event{Kind: EventPersistFailed, Err: err})
		return
	}

	c.mu.Lock()
	clearedHere := c.generation != gen
	c.mu.Unlock()
	if clearedHere {
		c.logger.Info("discarded save of turn that finished after a clear", zap.Uint64("generation", gen))
		return
	}

	rec, loadErr := c.store.Load(ctx)
	if loadErr != nil {
		c.logger.Error("failed to reload conversation after stale save", zap.Error(loadErr))
		c.emit(Event{Kind: EventPersistFailed, Err: err})
		return
	}

	c.mu.Lock()
	if c.sending || c.generation != gen {
		// Something newer started meanwhile; leave it alone.
		c.mu.Unlock()
		return
	}
	c.messages = model.Clone(rec.Messages)
	c.generation = rec.Generation
	c.mu.Unlock()

	c.logger.Info("adopted conversation cleared elsewhere", zap.Uint64("generation", rec.Generation))
	c.emit(Event{Kind: EventMessagesChanged})
	c.emit(Event{Kind: EventClearedElsewhere})
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe registers fn for events and returns a function that removes it.
func (c *Controller) Subscribe(fn Listener) func() {
	c.listenersMu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		delete(c.listeners, id)
		c.listenersMu.Unlock()
	}
}

// Close stops all notifications and rejects new submits. A turn in flight is
// not aborted; it still finishes and saves, but no longer changes what views
// see.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.listenersMu.Lock()
	c.listeners = make(map[int]Listener)
	c.listenersMu.Unlock()
}

func (c *Controller) emit(ev Event) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}

	c.listenersMu.RLock()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(ev)
	}
}
