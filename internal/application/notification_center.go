package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/community-inbox/internal/domain"
	"github.com/bnema/community-inbox/internal/logging"
	"github.com/bnema/community-inbox/internal/ports"
	"github.com/rs/zerolog"
)

// NotificationCenter keeps per-category notification counts. Only reply,
// mention and system are purely server-owned; the displayed message count
// comes from the UnreadAggregator.
type NotificationCenter struct {
	api           ports.NotificationAPI
	aggregator    *UnreadAggregator
	conversations *ConversationStore
	guard         *Guard
	logger        zerolog.Logger

	mu       sync.RWMutex
	server   domain.NotificationCounts
	hasTotal bool
	loaded   bool

	unsubscribeBadge func()

	publishMu  sync.Mutex
	listeners  listeners[domain.NotificationCounts]
	background sync.WaitGroup
}

func NewNotificationCenter(api ports.NotificationAPI, aggregator *UnreadAggregator, conversations *ConversationStore) *NotificationCenter {
	c := &NotificationCenter{
		api:           api,
		aggregator:    aggregator,
		conversations: conversations,
		guard:         NewGuard(),
		logger:        logging.Component("sync.counts"),
	}
	c.unsubscribeBadge = aggregator.Subscribe(func(int) { c.publish() })
	return c
}

// RefreshCounts replaces the server-owned counters with a fresh fetch.
func (c *NotificationCenter) RefreshCounts(ctx context.Context) error {
	token := c.guard.NextToken(ctx)

	counts, err := c.api.UnreadCounts(token.Context())
	if err != nil {
		return fmt.Errorf("fetch notification counts: %w", err)
	}

	committed := token.Commit(func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		for _, category := range domain.Categories() {
			counts.Set(category, counts.Get(category))
		}
		// A zero total next to non-zero categories means the payload omitted it.
		c.hasTotal = counts.Total > 0 || counts.Sum() == 0
		counts.Total = domain.ClampUnread(counts.Total)
		c.server = counts
		c.loaded = true
	})
	if !committed {
		return domain.ErrStaleResponse
	}

	c.publish()
	return nil
}

// MarkCategoryRead zeroes the category and lowers the total by its previous
// value before the best-effort server call. Marking messages read also clears
// every conversation.
func (c *NotificationCenter) MarkCategoryRead(ctx context.Context, category domain.Category) error {
	category, err := domain.ParseCategory(string(category))
	if err != nil {
		return err
	}

	c.guard.CancelPending()

	c.mu.Lock()
	previous := c.server.Get(category)
	c.server.Set(category, 0)
	if c.hasTotal {
		c.server.Total = domain.ClampUnread(c.server.Total - previous)
	}
	c.mu.Unlock()

	if category == domain.CategoryMessage {
		c.conversations.MarkAllRead(ctx)
	}
	c.publish()

	c.background.Add(1)
	go func() {
		defer c.background.Done()
		if err := c.api.MarkCategoryRead(context.WithoutCancel(ctx), category); err != nil {
			c.logger.Warn().Err(err).Str("category", string(category)).Msg("mark category read failed; local state kept")
		}
	}()

	return nil
}

// Counts returns the displayed counters.
func (c *NotificationCenter) Counts() domain.NotificationCounts {
	c.mu.RLock()
	server := c.server
	c.mu.RUnlock()

	return c.countsWithLive(c.aggregator.MessageCount(server.Message))
}

func (c *NotificationCenter) countsWithLive(live int) domain.NotificationCounts {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return displayCounts(c.server, c.hasTotal, live)
}

// Server returns the last counters as reported by the notification endpoint.
func (c *NotificationCenter) Server() domain.NotificationCounts {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.server
}

func (c *NotificationCenter) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *NotificationCenter) Subscribe(fn func(domain.NotificationCounts)) func() {
	return c.listeners.add(fn)
}

func (c *NotificationCenter) Close() {
	c.guard.Close()
	c.unsubscribeBadge()
}

func (c *NotificationCenter) Wait() {
	c.background.Wait()
}

func (c *NotificationCenter) publish() {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	c.listeners.notify(c.Counts())
}

// displayCounts folds the live message count into the server counters: the
// server's message contribution to the total is swapped for the live one.
func displayCounts(server domain.NotificationCounts, hasTotal bool, liveMessages int) domain.NotificationCounts {
	shown := server
	shown.Message = domain.ClampUnread(liveMessages)

	total := server.Sum()
	if hasTotal {
		total = server.Total
	}
	shown.Total = domain.ClampUnread(total - server.Message + shown.Message)

	return shown
}
