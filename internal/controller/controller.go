// Package controller owns the chat message list and mediates between the
// user, the backend and the view.
package controller

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/diogo/ai29/internal/api"
	apierrors "github.com/diogo/ai29/internal/errors"
	"github.com/diogo/ai29/internal/models"
	"github.com/diogo/ai29/internal/render"
)

// Controller is the chat UI controller. The message list is append-only
// except for NewChat, which replaces it atomically. Network calls are made
// without holding the lock, so overlapping submissions resolve independently
// and their results are appended in arrival order.
type Controller struct {
	api    api.ChatAPI
	view   View
	logger zerolog.Logger
	now    func() time.Time
	queue  *semaphore.Weighted

	mu          sync.Mutex
	messages    []models.Message
	nextSeq     int
	inFlight    int
	version     uint64
	placeholder int    // Seq of the startup welcome message, 0 once replaced
	generation  uint64 // bumped by every successful NewChat

	viewMu      sync.Mutex
	rendered    uint64
	indicator   bool
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// Option configures a Controller
type Option func(*Controller)

// WithView sets the display driven by the controller
func WithView(v View) Option {
	return func(c *Controller) {
		if v != nil {
			c.view = v
		}
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithSerializedSubmissions queues submissions so only one request is in
// flight and replies arrive in submission order
func WithSerializedSubmissions(enabled bool) Option {
	return func(c *Controller) {
		if enabled {
			c.queue = semaphore.NewWeighted(1)
		} else {
			c.queue = nil
		}
	}
}

// WithClock sets the time source for local message timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithoutPlaceholder starts with an empty list instead of the welcome message
func WithoutPlaceholder() Option {
	return func(c *Controller) {
		c.placeholder = -1
	}
}

// New creates a controller backed by client. The list starts with the
// welcome message, which history replaces once loaded.
func New(client api.ChatAPI, opts ...Option) *Controller {
	c := &Controller{
		api:         client,
		view:        NopView{},
		logger:      zerolog.Nop(),
		now:         time.Now,
		subscribers: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.placeholder == 0 {
		welcome := c.appendLocked(models.RoleAssistant, models.WelcomeText, 0)
		c.placeholder = welcome.Seq
	} else {
		c.placeholder = 0
	}
	return c
}

// Initialize loads the stored conversation. When history is non-empty it
// replaces the welcome placeholder; messages appended meanwhile stay after
// it. History fetched before a successful NewChat is discarded. Failure
// leaves the list untouched and is only logged.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	history, err := c.api.FetchHistory(ctx)
	if err != nil {
		c.logger.Error().Err(err).
			Str("endpoint", models.EndpointHistory).
			Int("status", apierrors.GetHTTPStatus(err)).
			Msg("failed to load chat history")
		return err
	}
	if len(history) == 0 {
		c.logger.Debug().Msg("chat history is empty")
		return nil
	}

	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		c.logger.Debug().Int("messages", len(history)).Msg("discarding history loaded before new chat")
		return nil
	}
	list := make([]models.Message, 0, len(history)+len(c.messages))
	for _, m := range history {
		m.Seq = c.takeSeq()
		m.ReplyTo = 0
		if !m.Role.IsValid() || m.Role == models.RoleError {
			m.Role = models.RoleAssistant
		}
		list = append(list, m)
	}
	for _, m := range c.messages {
		if m.Seq != c.placeholder {
			list = append(list, m)
		}
	}
	c.messages = list
	c.placeholder = 0
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Debug().Int("messages", len(history)).Msg("chat history loaded")
	c.publish(snap)
	c.viewCall(View.ScrollToBottom)
	return nil
}

// Submit sends text as a user message. Whitespace-only input is rejected
// with ErrEmptyMessage before anything is appended. Otherwise the user
// message is appended at once and the returned message is the assistant
// reply or the error notice that followed it. A failed request is reported
// in the list; the returned error only describes it.
func (c *Controller) Submit(ctx context.Context, text string) (models.Message, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.Message{}, apierrors.ErrEmptyMessage
	}

	c.mu.Lock()
	user := c.appendLocked(models.RoleUser, trimmed, 0)
	c.inFlight++
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	c.viewCall(View.ClearInput)
	c.viewCall(View.ScrollToBottom)

	reply, err := c.send(ctx, trimmed)

	c.mu.Lock()
	c.inFlight--
	var result models.Message
	if err != nil {
		text := apierrors.ServerMessage(err, models.UnknownErrorText, models.ConnectFailureText)
		result = c.appendLocked(models.RoleError, text, user.Seq)
	} else {
		result = c.appendLocked(models.RoleAssistant, reply, user.Seq)
	}
	snap = c.snapshotLocked()
	c.mu.Unlock()

	if err != nil {
		c.logger.Error().Err(err).
			Str("endpoint", models.EndpointChat).
			Int("status", apierrors.GetHTTPStatus(err)).
			Int("reply_to", user.Seq).
			Msg("chat request failed")
	}

	c.publish(snap)
	c.viewCall(View.ScrollToBottom)
	return result, err
}

// send performs the chat call, waiting for the queue when serialized
func (c *Controller) send(ctx context.Context, text string) (string, error) {
	if c.queue != nil {
		if err := c.queue.Acquire(ctx, 1); err != nil {
			return "", apierrors.NewNetworkErrorWithEndpoint("send message", models.EndpointChat, err)
		}
		defer c.queue.Release(1)
	}
	return c.api.SendMessage(ctx, text)
}

// NewChat clears the conversation on the backend. Only on success is the
// list reset to the welcome message and the input focused; on failure an
// error notice is appended and nothing else changes.
func (c *Controller) NewChat(ctx context.Context) error {
	err := c.api.ClearHistory(ctx)

	c.mu.Lock()
	if err != nil {
		c.appendLocked(models.RoleError, models.NewChatFailureText, 0)
	} else {
		c.messages = nil
		c.placeholder = 0
		c.generation++
		c.appendLocked(models.RoleAssistant, models.WelcomeText, 0)
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if err != nil {
		c.logger.Error().Err(err).
			Str("endpoint", models.EndpointClearHistory).
			Int("status", apierrors.GetHTTPStatus(err)).
			Msg("failed to start a new chat")
	}

	c.publish(snap)
	if err == nil {
		c.viewCall(View.FocusInput)
	}
	c.viewCall(View.ScrollToBottom)
	return err
}

// RenderMessage returns the HTML fragment for one message body
func (c *Controller) RenderMessage(role models.Role, text string) string {
	return render.RenderMessage(role, text)
}

// Messages returns a copy of the message list
func (c *Controller) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLocked()
}

// Snapshot returns the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that made the change and must not block.
// The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.viewMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.viewMu.Unlock()

	return func() {
		c.viewMu.Lock()
		delete(c.subscribers, id)
		c.viewMu.Unlock()
	}
}

// appendLocked adds a message with the next sequence number
func (c *Controller) appendLocked(role models.Role, content string, replyTo int) models.Message {
	m := models.Message{
		Seq:       c.takeSeq(),
		Role:      role,
		Content:   content,
		ReplyTo:   replyTo,
		Timestamp: c.now(),
	}
	c.messages = append(c.messages, m)
	c.version++
	return m
}

func (c *Controller) takeSeq() int {
	c.nextSeq++
	return c.nextSeq
}

func (c *Controller) copyLocked() []models.Message {
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Controller) snapshotLocked() Snapshot {
	c.version++
	return Snapshot{
		Messages:  c.copyLocked(),
		Indicator: c.inFlight > 0,
		InFlight:  c.inFlight,
		Version:   c.version,
	}
}

// publish pushes s to the view and subscribers unless a newer state was
// already shown
func (c *Controller) publish(s Snapshot) {
	c.viewMu.Lock()
	defer c.viewMu.Unlock()

	if s.Version <= c.rendered {
		return
	}
	c.rendered = s.Version

	c.view.Render(s)
	if s.Indicator != c.indicator {
		c.indicator = s.Indicator
		c.view.SetIndicator(s.Indicator)
	}
	for _, fn := range c.subscribers {
		fn(s)
	}
}

// viewCall runs a single view action in order with renders
func (c *Controller) viewCall(fn func(View)) {
	c.viewMu.Lock()
	defer c.viewMu.Unlock()
	fn(c.view)
}
