package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/community-inbox/internal/domain"
	"github.com/bnema/community-inbox/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []domain.UnreadEvent
}

func (r *recordedEvents) add(event domain.UnreadEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordedEvents) snapshot() []domain.UnreadEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.UnreadEvent(nil), r.events...)
}

func runForwarder(t *testing.T, forwarder *Forwarder) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- forwarder.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
}

func TestForwarderPublishesChangedCounters(t *testing.T) {
	publisher := mocks.NewMockEventPublisher(t)
	recorded := &recordedEvents{}
	publisher.EXPECT().Name().Return("test").Maybe()
	publisher.EXPECT().Publish(mock.Anything, mock.Anything).RunAndReturn(func(_ context.Context, event domain.UnreadEvent) error {
		recorded.add(event)
		return nil
	}).Maybe()

	forwarder := NewForwarder("work", fixedClock{now: fixtureTime}, publisher)
	runForwarder(t, forwarder)

	forwarder.Observe(Snapshot{
		Authenticated: true,
		Peers:         fixturePeers(),
		Badge:         7,
		Counts:        domain.NotificationCounts{Message: 7, Total: 7},
	})

	require.Eventually(t, func() bool { return len(recorded.snapshot()) == 1 }, time.Second, time.Millisecond)
	event := recorded.snapshot()[0]
	assert.Equal(t, domain.ProfileName("work"), event.Profile)
	assert.Equal(t, 7, event.Badge)
	assert.Equal(t, fixtureTime, event.At)
	assert.Equal(t, map[domain.PeerID]int{"alice": 5, "bob": 2}, event.PeerUnread)
}

func TestForwarderSkipsUnchangedCounters(t *testing.T) {
	publisher := mocks.NewMockEventPublisher(t)
	recorded := &recordedEvents{}
	publisher.EXPECT().Name().Return("test").Maybe()
	publisher.EXPECT().Publish(mock.Anything, mock.Anything).RunAndReturn(func(_ context.Context, event domain.UnreadEvent) error {
		recorded.add(event)
		return nil
	}).Maybe()

	forwarder := NewForwarder("work", fixedClock{now: fixtureTime}, publisher)
	runForwarder(t, forwarder)

	snapshot := Snapshot{Authenticated: true, Badge: 2, Counts: domain.NotificationCounts{Message: 2, Total: 2}}
	forwarder.Observe(snapshot)
	require.Eventually(t, func() bool { return len(recorded.snapshot()) == 1 }, time.Second, time.Millisecond)

	snapshot.WidgetOpen = true
	forwarder.Observe(snapshot)
	forwarder.Observe(Snapshot{Authenticated: false})
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, recorded.snapshot(), 1)

	snapshot.Badge = 0
	snapshot.Counts = domain.NotificationCounts{}
	forwarder.Observe(snapshot)
	require.Eventually(t, func() bool { return len(recorded.snapshot()) == 2 }, time.Second, time.Millisecond)
	assert.Zero(t, recorded.snapshot()[1].Badge)
}

func TestForwarderKeepsPublishingAfterSinkFailure(t *testing.T) {
	failing := mocks.NewMockEventPublisher(t)
	failing.EXPECT().Name().Return("broken").Maybe()
	failing.EXPECT().Publish(mock.Anything, mock.Anything).Return(errors.New("connection refused")).Maybe()

	healthy := mocks.NewMockEventPublisher(t)
	recorded := &recordedEvents{}
	healthy.EXPECT().Name().Return("healthy").Maybe()
	healthy.EXPECT().Publish(mock.Anything, mock.Anything).RunAndReturn(func(_ context.Context, event domain.UnreadEvent) error {
		recorded.add(event)
		return nil
	}).Maybe()

	forwarder := NewForwarder("work", fixedClock{now: fixtureTime}, failing, healthy)
	runForwarder(t, forwarder)

	forwarder.Observe(Snapshot{Authenticated: true, Badge: 1})
	require.Eventually(t, func() bool { return len(recorded.snapshot()) == 1 }, time.Second, time.Millisecond)
	forwarder.Observe(Snapshot{Authenticated: true, Badge: 3})
	require.Eventually(t, func() bool { return len(recorded.snapshot()) == 2 }, time.Second, time.Millisecond)
}

func TestForwarderWithoutPublishersWaitsForCancel(t *testing.T) {
	forwarder := NewForwarder("work", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.NoError(t, forwarder.Run(ctx))
}
