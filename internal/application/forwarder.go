package application

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/community-inbox/internal/domain"
	"github.com/bnema/community-inbox/internal/logging"
	"github.com/bnema/community-inbox/internal/ports"
	"github.com/rs/zerolog"
)

const defaultPublishTimeout = 5 * time.Second

// Forwarder relays unread changes to external publishers. Only the latest
// picture is kept, so a slow sink skips intermediate states instead of
// blocking the engine.
type Forwarder struct {
	profile    domain.ProfileName
	publishers []ports.EventPublisher
	clock      ports.Clock
	timeout    time.Duration
	logger     zerolog.Logger

	mu     sync.Mutex
	last   *domain.UnreadEvent
	next   *domain.UnreadEvent
	signal chan struct{}
}

func NewForwarder(profile domain.ProfileName, clock ports.Clock, publishers ...ports.EventPublisher) *Forwarder {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Forwarder{
		profile:    profile,
		publishers: publishers,
		clock:      clock,
		timeout:    defaultPublishTimeout,
		logger:     logging.Component("publish"),
		signal:     make(chan struct{}, 1),
	}
}

// Observe is an Engine subscriber. It queues an event when counters changed.
func (f *Forwarder) Observe(snapshot Snapshot) {
	if !snapshot.Authenticated {
		return
	}

	event := domain.UnreadEvent{
		Profile:    f.profile,
		Badge:      snapshot.Badge,
		Counts:     snapshot.Counts,
		PeerUnread: make(map[domain.PeerID]int, len(snapshot.Peers)),
		At:         f.clock.Now(),
	}
	for _, peer := range snapshot.Peers {
		if peer.UnreadCount > 0 {
			event.PeerUnread[peer.ID] = peer.UnreadCount
		}
	}

	f.mu.Lock()
	if f.last != nil && f.last.SameCounters(event) {
		f.mu.Unlock()
		return
	}
	f.last = &event
	f.next = &event
	f.mu.Unlock()

	select {
	case f.signal <- struct{}{}:
	default:
	}
}

// Run publishes queued events until ctx is done.
func (f *Forwarder) Run(ctx context.Context) error {
	if len(f.publishers) == 0 {
		<-ctx.Done()
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-f.signal:
			f.mu.Lock()
			event := f.next
			f.next = nil
			f.mu.Unlock()

			if event != nil {
				f.publish(ctx, *event)
			}
		}
	}
}

func (f *Forwarder) publish(ctx context.Context, event domain.UnreadEvent) {
	for _, publisher := range f.publishers {
		publishCtx, cancel := context.WithTimeout(ctx, f.timeout)
		err := publisher.Publish(publishCtx, event)
		cancel()

		if err != nil {
			f.logger.Warn().Err(err).Str("sink", publisher.Name()).Msg("publish unread event failed")
			continue
		}
		f.logger.Debug().Str("sink", publisher.Name()).Int("badge", event.Badge).Msg("unread event published")
	}
}
