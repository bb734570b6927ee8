// Package chat keeps the message list of the active project in sync with the server.
//
// The channel pulls: it reloads on mount, when the project changes, while the
// user types (rate limited), and on a fixed interval from Run. Results for a
// project that is no longer active are dropped.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	models "quillhouse/internal/domain/models/workspace"
	"quillhouse/internal/metrics"
	"quillhouse/internal/workspace/store"
)

// MaxVisible is how many messages the channel renders.
const MaxVisible = 100

// Truncate returns the newest MaxVisible messages in their original order.
func Truncate(msgs []models.Message) []models.Message {
	if len(msgs) > MaxVisible {
		msgs = msgs[len(msgs)-MaxVisible:]
	}
	return append([]models.Message(nil), msgs...)
}

// Backend is the message store on the server.
type Backend interface {
	ListMessages(ctx context.Context, projectID string) ([]models.Message, error)
	SendMessage(ctx context.Context, projectID, text string) (*models.Message, error)
}

// Config configures a Channel.
type Config struct {
	Backend  Backend
	SenderID string
	Logger   *slog.Logger

	PollInterval time.Duration
	// ReloadBurst bounds reloads triggered by typing; one token refills per PollInterval.
	ReloadBurst int

	// OnUpdate, if set, receives the rendered list after every applied change.
	OnUpdate func([]models.Message)
	// OnScroll, if set, is called when the view should scroll to the newest message.
	OnScroll func()
}

// Channel is safe for concurrent use.
type Channel struct {
	cfg     Config
	logger  *slog.Logger
	limiter *rate.Limiter

	mu        sync.Mutex
	projectID string
	draft     string
	messages  []models.Message
	// reloadSeq numbers reloads as they start. Results numbered at or below
	// applied are older than the list on screen and are dropped.
	reloadSeq uint64
	applied   uint64
}

// New creates a channel with no active project.
func New(cfg Config) *Channel {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.ReloadBurst <= 0 {
		cfg.ReloadBurst = 1
	}
	return &Channel{
		cfg:     cfg,
		logger:  logger.With("component", "chat"),
		limiter: rate.NewLimiter(rate.Every(cfg.PollInterval), cfg.ReloadBurst),
	}
}

// ProjectID returns the active project id.
func (c *Channel) ProjectID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectID
}

// SetProject scopes the channel to projectID and reloads. Switching projects
// clears the list immediately so messages never show under the wrong project.
// Setting the current project again is a no-op and returns nil.
func (c *Channel) SetProject(ctx context.Context, projectID string) <-chan error {
	c.mu.Lock()
	if c.projectID == projectID {
		c.mu.Unlock()
		return done(nil)
	}
	c.projectID = projectID
	c.messages = nil
	c.applied = c.reloadSeq
	c.mu.Unlock()

	c.publish()
	if projectID == "" {
		return done(nil)
	}
	return c.Reload(ctx)
}

// Follow keeps the channel scoped to the store's active project until cancel is called.
func (c *Channel) Follow(ctx context.Context, st *store.Store) (cancel func()) {
	c.SetProject(ctx, st.Active().ProjectID())
	return st.Subscribe(func(e store.Entity) {
		c.SetProject(ctx, e.ProjectID())
	})
}

// Messages returns the rendered list.
func (c *Channel) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Message(nil), c.messages...)
}

// Draft returns the text in the input box.
func (c *Channel) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SetDraft records typed input and reloads if the rate limit allows.
func (c *Channel) SetDraft(ctx context.Context, text string) {
	c.mu.Lock()
	changed := c.draft != text
	c.draft = text
	c.mu.Unlock()

	if !changed {
		return
	}
	if !c.limiter.Allow() {
		metrics.ChatReloadsTotal.WithLabelValues("throttled").Inc()
		return
	}
	c.Reload(ctx)
}

// Reload fetches the message list in the background. With no active project
// it does nothing and the channel yields nil.
func (c *Channel) Reload(ctx context.Context) <-chan error {
	projectID := c.ProjectID()
	if projectID == "" {
		return done(nil)
	}

	out := make(chan error, 1)
	go func() {
		defer close(out)
		out <- c.reload(ctx, projectID)
	}()
	return out
}

func (c *Channel) reload(ctx context.Context, projectID string) error {
	c.mu.Lock()
	c.reloadSeq++
	seq := c.reloadSeq
	c.mu.Unlock()

	msgs, err := c.cfg.Backend.ListMessages(ctx, projectID)
	if err != nil {
		metrics.ChatReloadsTotal.WithLabelValues("error").Inc()
		c.logger.Warn("failed to load messages", "project_id", projectID, "error", err)
		return fmt.Errorf("load messages: %w", err)
	}

	c.mu.Lock()
	if c.projectID != projectID || seq <= c.applied {
		c.mu.Unlock()
		metrics.ChatReloadsTotal.WithLabelValues("stale").Inc()
		return nil
	}
	c.applied = seq
	c.messages = Truncate(msgs)
	c.mu.Unlock()

	metrics.ChatReloadsTotal.WithLabelValues("ok").Inc()
	c.publish()
	return nil
}

// Send posts the draft as typed. The input is cleared and the view scrolled
// before Send returns, whatever the network outcome. ok is false, and nothing is
// sent or cleared, when the draft is only whitespace or there is no sender or project.
func (c *Channel) Send(ctx context.Context) (result <-chan error, ok bool) {
	c.mu.Lock()
	text := c.draft
	projectID := c.projectID
	if strings.TrimSpace(text) == "" || projectID == "" || c.cfg.SenderID == "" {
		c.mu.Unlock()
		return done(nil), false
	}
	c.draft = ""
	c.mu.Unlock()

	if c.cfg.OnScroll != nil {
		c.cfg.OnScroll()
	}

	out := make(chan error, 1)
	go func() {
		defer close(out)
		out <- c.send(ctx, projectID, text)
	}()
	return out, true
}

func (c *Channel) send(ctx context.Context, projectID, text string) error {
	msg, err := c.cfg.Backend.SendMessage(ctx, projectID, text)
	if err != nil {
		c.logger.Warn("failed to send message", "project_id", projectID, "error", err)
		return fmt.Errorf("send message: %w", err)
	}
	metrics.ChatMessagesSentTotal.WithLabelValues("client").Inc()

	c.mu.Lock()
	if c.projectID != projectID {
		c.mu.Unlock()
		return nil
	}
	// Reloads that started before the message existed would drop it.
	c.applied = c.reloadSeq
	if !slices.ContainsFunc(c.messages, func(m models.Message) bool { return m.ID == msg.ID }) {
		c.messages = Truncate(append(c.messages, *msg))
	}
	c.mu.Unlock()

	c.publish()
	return nil
}

// Run reloads every PollInterval until ctx is done.
func (c *Channel) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			projectID := c.ProjectID()
			if projectID == "" {
				continue
			}
			if err := c.reload(ctx, projectID); err != nil && ctx.Err() == nil {
				c.logger.Debug("poll failed", "error", err)
			}
		}
	}
}

func (c *Channel) publish() {
	if c.cfg.OnUpdate != nil {
		c.cfg.OnUpdate(c.Messages())
	}
}

func done(err error) <-chan error {
	ch := make(chan error, 1)
	ch <- err
	close(ch)
	return ch
}
