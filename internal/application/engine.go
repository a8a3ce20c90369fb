package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/community-inbox/internal/domain"
	"github.com/bnema/community-inbox/internal/logging"
	"github.com/bnema/community-inbox/internal/ports"
	"github.com/rs/zerolog"
)

var ErrEngineClosed = errors.New("sync engine closed")

type EngineOptions struct {
	PeersInterval    time.Duration
	MessagesInterval time.Duration
	CountsInterval   time.Duration
	ReconcileDelay   time.Duration
	Self             Sender
	Clock            ports.Clock
}

// Snapshot is everything a presentation layer needs to draw the inbox.
type Snapshot struct {
	Authenticated bool
	WidgetOpen    bool
	Peers         []domain.Peer
	Selected      domain.PeerID
	Conversation  StreamView
	Badge         int
	Counts        domain.NotificationCounts
}

// Engine composes the stores with the three poll schedules and enforces their
// preconditions: peers and counts poll while authenticated, messages poll
// while authenticated with the chat widget open on a selected peer.
type Engine struct {
	messaging ports.MessagingAPI
	session   ports.SessionSource
	opts      EngineOptions
	logger    zerolog.Logger

	conversations *ConversationStore
	aggregator    *UnreadAggregator
	center        *NotificationCenter
	scheduler     *PollScheduler

	mu            sync.Mutex
	runCtx        context.Context
	authenticated bool
	widgetOpen    bool
	closed        bool
	stream        *MessageStream
	unsubStream   func()
	retired       []*MessageStream

	scheduleMu  sync.Mutex
	publishMu   sync.Mutex
	listeners   listeners[Snapshot]
	unsubscribe []func()
}

func NewEngine(messaging ports.MessagingAPI, notifications ports.NotificationAPI, session ports.SessionSource, opts EngineOptions) *Engine {
	if opts.Clock == nil {
		opts.Clock = ports.SystemClock{}
	}

	conversations := NewConversationStore(messaging)
	aggregator := NewUnreadAggregator(conversations)
	center := NewNotificationCenter(notifications, aggregator, conversations)

	e := &Engine{
		messaging:     messaging,
		session:       session,
		opts:          opts,
		logger:        logging.Component("sync"),
		conversations: conversations,
		aggregator:    aggregator,
		center:        center,
	}
	e.scheduler = NewPollScheduler(e.logger, e.onPollError)
	e.unsubscribe = []func(){
		conversations.Subscribe(func(ConversationSnapshot) { e.publish() }),
		center.Subscribe(func(domain.NotificationCounts) { e.publish() }),
	}

	return e
}

// Start checks the session and, when it is valid, begins polling peers and counts.
// Schedules live until ctx is cancelled or Close is called.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	e.runCtx = ctx
	e.mu.Unlock()

	if _, err := e.session.Token(ctx); err != nil {
		e.SetAuthenticated(false)
		return fmt.Errorf("resolve session: %w", err)
	}

	e.SetAuthenticated(true)
	e.logger.Info().Msg("sync engine started")
	return nil
}

// Refresh fetches peers and counts once, out of band.
func (e *Engine) Refresh(ctx context.Context) error {
	if err := e.requireSession(); err != nil {
		return err
	}

	peersErr := e.conversations.RefreshPeers(ctx)
	countsErr := e.center.RefreshCounts(ctx)
	if err := errors.Join(peersErr, countsErr); err != nil {
		e.checkAuth(err)
		return err
	}

	e.scheduler.Peers.Postpone()
	e.scheduler.Counts.Postpone()
	return nil
}

func (e *Engine) SetAuthenticated(authenticated bool) {
	e.mu.Lock()
	changed := e.authenticated != authenticated
	e.authenticated = authenticated
	e.mu.Unlock()

	e.reconcileSchedules(false)
	if changed {
		e.publish()
	}
}

// OpenWidget mounts the conversation view. Opening an open widget is a no-op.
func (e *Engine) OpenWidget() error {
	if err := e.requireSession(); err != nil {
		return err
	}

	e.mu.Lock()
	if e.widgetOpen {
		e.mu.Unlock()
		return nil
	}
	stream := NewMessageStream(e.messaging, StreamOptions{
		Self:           e.opts.Self,
		ReconcileDelay: e.opts.ReconcileDelay,
		Clock:          e.opts.Clock,
	})
	e.stream = stream
	e.widgetOpen = true
	e.unsubStream = stream.Subscribe(func(StreamView) { e.publish() })
	e.mu.Unlock()

	e.reconcileSchedules(false)
	e.publish()
	return nil
}

// CloseWidget unmounts the conversation view: in-flight fetches are dropped and
// the selection is cleared.
func (e *Engine) CloseWidget() {
	e.mu.Lock()
	stream := e.stream
	unsub := e.unsubStream
	e.stream = nil
	e.unsubStream = nil
	e.widgetOpen = false
	if stream != nil {
		e.retired = append(e.retired, stream)
	}
	e.mu.Unlock()

	if stream == nil {
		return
	}
	unsub()
	stream.Close()
	e.conversations.Deselect()

	e.reconcileSchedules(false)
	e.publish()
}

// SelectPeer opens the widget if needed and switches the active conversation.
func (e *Engine) SelectPeer(ctx context.Context, peerID domain.PeerID) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	if _, ok := e.conversations.Peer(peerID); !ok {
		return fmt.Errorf("select %s: %w", peerID, domain.ErrPeerNotFound)
	}
	if err := e.OpenWidget(); err != nil {
		return err
	}

	changed, err := e.conversations.SelectPeer(ctx, peerID, e.currentStream())
	if changed {
		e.reconcileSchedules(true)
		e.scheduler.Messages.Postpone()
	}
	if err != nil && !IsCancellation(err) {
		e.checkAuth(err)
		return err
	}
	return nil
}

// OpenChat starts a conversation with a peer that may not be listed yet.
func (e *Engine) OpenChat(ctx context.Context, peer domain.Peer) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	if peer.ID == "" {
		return fmt.Errorf("open chat: %w", domain.ErrPeerNotFound)
	}
	e.conversations.OpenChat(peer)
	return e.SelectPeer(ctx, peer.ID)
}

// Send posts content to the selected peer and bumps its preview on success.
func (e *Engine) Send(ctx context.Context, peerID domain.PeerID, content string) (domain.Message, error) {
	if err := e.requireSession(); err != nil {
		return domain.Message{}, err
	}

	stream := e.currentStream()
	if stream == nil || e.conversations.Selected() != peerID {
		return domain.Message{}, fmt.Errorf("send to %s: %w", peerID, domain.ErrConversationNotActive)
	}

	message, err := stream.Send(ctx, peerID, content)
	if err != nil {
		e.checkAuth(err)
		return message, err
	}

	if err := e.conversations.BumpPreview(peerID, content, message.CreatedAt); err != nil {
		e.logger.Debug().Err(err).Msg("preview not bumped")
	}
	return message, nil
}

func (e *Engine) MarkCategoryRead(ctx context.Context, category domain.Category) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	return e.center.MarkCategoryRead(ctx, category)
}

func (e *Engine) MarkAllRead(ctx context.Context) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	e.conversations.MarkAllRead(ctx)
	return nil
}

func (e *Engine) Badge() int {
	return e.aggregator.Total()
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	authenticated := e.authenticated
	widgetOpen := e.widgetOpen
	stream := e.stream
	e.mu.Unlock()

	conversations := e.conversations.Snapshot()
	var view StreamView
	if stream != nil {
		view = stream.View()
	}

	return Snapshot{
		Authenticated: authenticated,
		WidgetOpen:    widgetOpen,
		Peers:         conversations.Peers,
		Selected:      conversations.Selected,
		Conversation:  view,
		Badge:         conversations.UnreadTotal,
		Counts:        e.center.countsWithLive(conversations.UnreadTotal),
	}
}

// Subscribe registers fn for every state change. fn runs on the publishing
// goroutine and must not call engine operations synchronously.
func (e *Engine) Subscribe(fn func(Snapshot)) func() {
	return e.listeners.add(fn)
}

// Close stops every schedule, unmounts the widget and waits for background requests.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.authenticated = false
	if e.stream != nil {
		e.retired = append(e.retired, e.stream)
	}
	retired := e.retired
	e.stream = nil
	e.widgetOpen = false
	e.mu.Unlock()

	e.scheduler.StopAll()
	for _, stream := range retired {
		stream.Close()
		stream.Wait()
	}
	e.center.Close()
	e.aggregator.Close()
	e.conversations.Close()
	e.conversations.Wait()
	e.center.Wait()

	for _, unsubscribe := range e.unsubscribe {
		unsubscribe()
	}
	e.logger.Info().Msg("sync engine closed")
}

func (e *Engine) requireSession() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	if !e.authenticated {
		return domain.ErrUnauthenticated
	}
	return nil
}

func (e *Engine) currentStream() *MessageStream {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stream
}

// reconcileSchedules starts or stops each schedule to match its precondition.
// messagesFetched skips the immediate messages poll after an out-of-band load.
func (e *Engine) reconcileSchedules(messagesFetched bool) {
	e.scheduleMu.Lock()
	defer e.scheduleMu.Unlock()

	e.mu.Lock()
	ctx := e.runCtx
	active := e.authenticated && !e.closed
	messages := active && e.widgetOpen && e.stream != nil
	e.mu.Unlock()
	messages = messages && e.conversations.Selected() != ""

	if ctx == nil {
		return
	}

	toggle(ctx, e.scheduler.Peers, active, e.opts.PeersInterval, e.pollPeers, true)
	toggle(ctx, e.scheduler.Counts, active, e.opts.CountsInterval, e.pollCounts, true)
	toggle(ctx, e.scheduler.Messages, messages, e.opts.MessagesInterval, e.pollMessages, !messagesFetched)
}

func toggle(ctx context.Context, schedule *Schedule, on bool, cadence time.Duration, task Task, immediate bool) {
	switch {
	case on && !schedule.Running():
		if immediate {
			schedule.Start(ctx, cadence, task)
		} else {
			schedule.StartDeferred(ctx, cadence, task)
		}
	case !on && schedule.Running():
		schedule.Stop()
	}
}

func (e *Engine) pollPeers(ctx context.Context) error {
	return e.conversations.RefreshPeers(ctx)
}

func (e *Engine) pollCounts(ctx context.Context) error {
	return e.center.RefreshCounts(ctx)
}

func (e *Engine) pollMessages(ctx context.Context) error {
	stream := e.currentStream()
	peerID := e.conversations.Selected()
	if stream == nil || peerID == "" {
		return nil
	}
	return stream.Load(ctx, peerID)
}

func (e *Engine) onPollError(err error) {
	e.checkAuth(err)
}

// checkAuth stops polling when err shows the session is gone. It never waits
// for schedules, so it is safe from inside a poll iteration.
func (e *Engine) checkAuth(err error) {
	if !domain.IsAuthFailure(err) {
		return
	}

	e.mu.Lock()
	wasAuthenticated := e.authenticated
	e.authenticated = false
	e.mu.Unlock()

	if !wasAuthenticated {
		return
	}
	e.scheduler.HaltAll()
	e.logger.Warn().Err(err).Msg("session lost, polling stopped")
	e.publish()
}

func (e *Engine) publish() {
	e.publishMu.Lock()
	defer e.publishMu.Unlock()
	e.listeners.notify(e.Snapshot())
}
