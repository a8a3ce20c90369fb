package application

import (
	"sync"

	"github.com/bnema/community-inbox/internal/logging"
	"github.com/rs/zerolog"
)

// UnreadAggregator derives the chat badge from the conversation store. It
// never caches: Total reads the live peer counters.
type UnreadAggregator struct {
	store  *ConversationStore
	logger zerolog.Logger

	mu          sync.Mutex
	diverged    bool
	unsubscribe func()

	listeners listeners[int]
}

func NewUnreadAggregator(store *ConversationStore) *UnreadAggregator {
	a := &UnreadAggregator{
		store:  store,
		logger: logging.Component("sync.badge"),
	}
	a.unsubscribe = store.Subscribe(func(snapshot ConversationSnapshot) {
		a.listeners.notify(snapshot.UnreadTotal)
	})
	return a
}

// Total is the sum of every peer's unread counter.
func (a *UnreadAggregator) Total() int {
	return a.store.UnreadTotal()
}

// MessageCount resolves the message-category count shown next to the server's
// value: the live conversation total always wins.
func (a *UnreadAggregator) MessageCount(server int) int {
	live := a.Total()

	a.mu.Lock()
	defer a.mu.Unlock()
	diverged := live != server && a.store.Loaded()
	if diverged && !a.diverged {
		a.logger.Debug().Int("live", live).Int("server", server).Msg("message count diverges from notification endpoint")
	}
	a.diverged = diverged

	return live
}

// Subscribe registers fn for every badge recomputation.
func (a *UnreadAggregator) Subscribe(fn func(total int)) func() {
	return a.listeners.add(fn)
}

func (a *UnreadAggregator) Close() {
	a.unsubscribe()
}
