package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bnema/community-inbox/internal/domain"
	"github.com/bnema/community-inbox/internal/logging"
	"github.com/bnema/community-inbox/internal/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type StreamState int

const (
	StreamEmpty StreamState = iota
	StreamLoading
	StreamLoaded
)

func (s StreamState) String() string {
	switch s {
	case StreamLoading:
		return "loading"
	case StreamLoaded:
		return "loaded"
	default:
		return "empty"
	}
}

// StreamView is an immutable copy of the active conversation.
type StreamView struct {
	PeerID   domain.PeerID
	State    StreamState
	Messages []domain.Message
	// Failed lists optimistic messages whose send request failed. They stay in Messages.
	Failed map[domain.MessageID]bool
}

// Sender identifies the local user on optimistic messages.
type Sender struct {
	ID          domain.PeerID
	DisplayName string
	AvatarRef   string
}

type StreamOptions struct {
	Self           Sender
	ReconcileDelay time.Duration
	Clock          ports.Clock
}

type pendingSend struct {
	message  domain.Message
	serverID domain.MessageID
	acked    bool
	failed   bool
	// listed holds the ids already loaded when the send was issued.
	listed map[domain.MessageID]struct{}
}

// MessageStream holds the messages of the one conversation shown by a mounted
// chat view. Closing it is the view unmount: every later response is dropped.
type MessageStream struct {
	api    ports.MessagingAPI
	guard  *Guard
	self   Sender
	delay  time.Duration
	clock  ports.Clock
	logger zerolog.Logger

	mu      sync.Mutex
	peerID  domain.PeerID
	epoch   uint64
	state   StreamState
	loaded  []domain.Message
	pending []pendingSend
	timers  map[*time.Timer]struct{}
	closed  bool

	publishMu  sync.Mutex
	listeners  listeners[StreamView]
	background sync.WaitGroup
}

func NewMessageStream(api ports.MessagingAPI, opts StreamOptions) *MessageStream {
	clock := opts.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &MessageStream{
		api:    api,
		guard:  NewGuard(),
		self:   opts.Self,
		delay:  opts.ReconcileDelay,
		clock:  clock,
		logger: logging.Component("sync.messages"),
		timers: make(map[*time.Timer]struct{}),
	}
}

// Load fetches the full conversation with peerID and replaces local state with it.
// Optimistic sends the server now lists are superseded; the rest stay appended.
func (m *MessageStream) Load(ctx context.Context, peerID domain.PeerID) error {
	return m.load(ctx, peerID, func() bool {
		return m.beginLoad(peerID)
	})
}

// reconcile reloads peerID after a send. It never switches the conversation
// and leaves an in-flight load alone.
func (m *MessageStream) reconcile(ctx context.Context, peerID domain.PeerID, epoch uint64) error {
	return m.load(ctx, peerID, func() bool {
		m.mu.Lock()
		current := !m.closed && m.peerID == peerID && m.epoch == epoch && m.state != StreamLoading
		m.mu.Unlock()
		return current && m.beginLoad(peerID)
	})
}

// load issues a token only if begin admits it; begin runs under the guard lock
// so a conversation switch and its token are one step.
func (m *MessageStream) load(ctx context.Context, peerID domain.PeerID, begin func() bool) error {
	token, ok := m.guard.NextTokenIf(ctx, begin)
	if !ok {
		return domain.ErrStaleResponse
	}
	m.publish()

	messages, err := m.api.Conversation(token.Context(), peerID)
	if err != nil {
		if token.Commit(func() { m.abortLoad(peerID) }) {
			m.publish()
		}
		return fmt.Errorf("fetch conversation %s: %w", peerID, err)
	}

	if !token.Commit(func() { m.finishLoad(peerID, messages) }) {
		return domain.ErrStaleResponse
	}
	m.logger.Debug().Str("peer", string(peerID)).Int("messages", len(messages)).Msg("conversation loaded")
	m.publish()
	return nil
}

func (m *MessageStream) beginLoad(peerID domain.PeerID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}
	if m.peerID != peerID {
		m.peerID = peerID
		m.epoch++
		m.loaded = nil
		m.pending = nil
		m.stopTimersLocked()
	}
	m.state = StreamLoading
	return true
}

func (m *MessageStream) abortLoad(peerID domain.PeerID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.peerID != peerID || m.state != StreamLoading {
		return
	}
	if m.loaded == nil && len(m.pending) == 0 {
		m.state = StreamEmpty
		return
	}
	m.state = StreamLoaded
}

func (m *MessageStream) finishLoad(peerID domain.PeerID, messages []domain.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.peerID != peerID {
		return
	}

	loaded := make([]domain.Message, len(messages))
	copy(loaded, messages)
	domain.SortMessages(loaded)

	known := make(map[domain.MessageID]struct{}, len(loaded))
	for _, message := range loaded {
		known[message.ID] = struct{}{}
	}
	claimed := make(map[domain.MessageID]struct{}, len(m.pending))
	for _, entry := range m.pending {
		if entry.serverID != "" {
			claimed[entry.serverID] = struct{}{}
		}
	}

	kept := m.pending[:0]
	for _, entry := range m.pending {
		if entry.serverID != "" {
			if _, ok := known[entry.serverID]; ok {
				continue
			}
		} else if entry.acked && m.claimByContent(entry, loaded, claimed) {
			continue
		}
		kept = append(kept, entry)
	}

	m.loaded = loaded
	m.pending = kept
	m.state = StreamLoaded
}

// claimByContent settles a send the server acknowledged without an id: the
// first unclaimed message from self with the same content that was not listed
// when the send was issued is taken as its server copy.
func (m *MessageStream) claimByContent(entry pendingSend, loaded []domain.Message, claimed map[domain.MessageID]struct{}) bool {
	for _, message := range loaded {
		if message.Content != entry.message.Content {
			continue
		}
		if m.self.ID != "" && message.SenderID != m.self.ID {
			continue
		}
		if _, ok := claimed[message.ID]; ok {
			continue
		}
		if _, ok := entry.listed[message.ID]; ok {
			continue
		}
		claimed[message.ID] = struct{}{}
		return true
	}
	return false
}

// Send shows content in the active conversation at once, posts it, and on
// success schedules a reconciliation fetch after the configured delay.
// A failed send stays visible and is not retried.
func (m *MessageStream) Send(ctx context.Context, peerID domain.PeerID, content string) (domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Message{}, domain.ErrEmptyMessage
	}
	if !m.guard.IsAlive() {
		return domain.Message{}, domain.ErrConversationNotActive
	}

	message := domain.Message{
		ID:              domain.MessageID(domain.LocalMessagePrefix + uuid.NewString()),
		SenderID:        m.self.ID,
		SenderName:      m.self.DisplayName,
		SenderAvatarRef: m.self.AvatarRef,
		Content:         content,
		CreatedAt:       m.clock.Now(),
		IsRead:          true,
		Local:           true,
	}

	m.mu.Lock()
	if m.closed || m.peerID != peerID {
		m.mu.Unlock()
		return domain.Message{}, fmt.Errorf("send to %s: %w", peerID, domain.ErrConversationNotActive)
	}
	if m.state == StreamEmpty {
		m.state = StreamLoaded
	}
	listed := make(map[domain.MessageID]struct{}, len(m.loaded))
	for _, loaded := range m.loaded {
		listed[loaded.ID] = struct{}{}
	}
	m.pending = append(m.pending, pendingSend{message: message, listed: listed})
	m.mu.Unlock()
	m.publish()

	serverID, err := m.api.SendMessage(ctx, peerID, content)
	if err != nil {
		m.updatePending(message.ID, func(entry *pendingSend) { entry.failed = true })
		m.publish()
		m.logger.Warn().Err(err).Str("peer", string(peerID)).Msg("send failed; optimistic message kept")
		return message, fmt.Errorf("send message to %s: %w", peerID, err)
	}

	m.updatePending(message.ID, func(entry *pendingSend) {
		entry.serverID = serverID
		entry.acked = true
	})
	m.scheduleReconcile(peerID)
	return message, nil
}

func (m *MessageStream) updatePending(id domain.MessageID, fn func(*pendingSend)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	for i := range m.pending {
		if m.pending[i].message.ID == id {
			fn(&m.pending[i])
			return
		}
	}
}

func (m *MessageStream) scheduleReconcile(peerID domain.PeerID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.peerID != peerID {
		return
	}

	epoch := m.epoch
	m.background.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(m.delay, func() {
		defer m.background.Done()

		m.mu.Lock()
		delete(m.timers, timer)
		m.mu.Unlock()

		if err := m.reconcile(context.Background(), peerID, epoch); err != nil && !IsCancellation(err) {
			m.logger.Warn().Err(err).Str("peer", string(peerID)).Msg("reconcile after send failed")
		}
	})
	m.timers[timer] = struct{}{}
}

func (m *MessageStream) PeerID() domain.PeerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peerID
}

func (m *MessageStream) State() StreamState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Messages returns the last authoritative list followed by unreconciled sends.
func (m *MessageStream) Messages() []domain.Message {
	return m.View().Messages
}

func (m *MessageStream) View() StreamView {
	m.mu.Lock()
	defer m.mu.Unlock()

	messages := make([]domain.Message, 0, len(m.loaded)+len(m.pending))
	messages = append(messages, m.loaded...)
	failed := make(map[domain.MessageID]bool)
	for _, entry := range m.pending {
		messages = append(messages, entry.message)
		if entry.failed {
			failed[entry.message.ID] = true
		}
	}

	return StreamView{
		PeerID:   m.peerID,
		State:    m.state,
		Messages: messages,
		Failed:   failed,
	}
}

func (m *MessageStream) Subscribe(fn func(StreamView)) func() {
	return m.listeners.add(fn)
}

// Close unmounts the stream. In-flight fetches are aborted and pending reconciliations dropped.
func (m *MessageStream) Close() {
	m.mu.Lock()
	m.closed = true
	m.stopTimersLocked()
	m.mu.Unlock()

	m.guard.Close()
}

func (m *MessageStream) stopTimersLocked() {
	for timer := range m.timers {
		if timer.Stop() {
			m.background.Done()
		}
		delete(m.timers, timer)
	}
}

// Wait blocks until scheduled reconciliations have run or were dropped.
func (m *MessageStream) Wait() {
	m.background.Wait()
}

func (m *MessageStream) publish() {
	if !m.guard.IsAlive() {
		return
	}
	m.publishMu.Lock()
	defer m.publishMu.Unlock()
	m.listeners.notify(m.View())
}
