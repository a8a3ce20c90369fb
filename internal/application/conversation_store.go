package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/community-inbox/internal/domain"
	"github.com/bnema/community-inbox/internal/logging"
	"github.com/bnema/community-inbox/internal/ports"
	"github.com/rs/zerolog"
)

// ConversationSnapshot is an immutable copy of the peer list.
type ConversationSnapshot struct {
	Peers       []domain.Peer
	Selected    domain.PeerID
	UnreadTotal int
}

// ConversationLoader performs the immediate conversation fetch after a peer switch.
type ConversationLoader interface {
	Load(ctx context.Context, peerID domain.PeerID) error
}

// ConversationStore owns the peer list with its per-peer unread counters.
type ConversationStore struct {
	api    ports.MessagingAPI
	guard  *Guard
	logger zerolog.Logger

	mu       sync.RWMutex
	peers    []domain.Peer
	selected domain.PeerID
	loaded   bool

	publishMu  sync.Mutex
	listeners  listeners[ConversationSnapshot]
	background sync.WaitGroup
}

func NewConversationStore(api ports.MessagingAPI) *ConversationStore {
	return &ConversationStore{
		api:    api,
		guard:  NewGuard(),
		logger: logging.Component("sync.peers"),
	}
}

// RefreshPeers replaces the peer list with the server's, keeping directly
// opened peers the server does not list yet.
func (s *ConversationStore) RefreshPeers(ctx context.Context) error {
	token := s.guard.NextToken(ctx)

	peers, err := s.api.ListPeers(token.Context())
	if err != nil {
		return fmt.Errorf("list peers: %w", err)
	}

	var reRead domain.PeerID
	committed := token.Commit(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.peers = mergePeers(peers, s.peers)
		s.loaded = true
		if i := s.indexLocked(s.selected); i >= 0 && s.peers[i].UnreadCount > 0 {
			// The open conversation is on screen, so whatever arrived is read.
			s.peers[i].UnreadCount = 0
			reRead = s.selected
		}
	})
	if !committed {
		return domain.ErrStaleResponse
	}

	s.logger.Debug().Int("peers", len(peers)).Msg("peer list refreshed")
	if reRead != "" {
		s.markReadInBackground(ctx, reRead)
	}
	s.publish()
	return nil
}

// ClearUnread zeroes the peer's counter locally and fires a best-effort mark-read.
// A failed request is not rolled back.
func (s *ConversationStore) ClearUnread(ctx context.Context, peerID domain.PeerID) {
	s.guard.CancelPending()

	s.mu.Lock()
	changed := false
	if i := s.indexLocked(peerID); i >= 0 && s.peers[i].UnreadCount != 0 {
		s.peers[i].UnreadCount = 0
		changed = true
	}
	s.mu.Unlock()

	if changed {
		s.publish()
	}
	s.markReadInBackground(ctx, peerID)
}

// BumpPreview records a locally sent message as the peer's latest one. Unread is untouched.
func (s *ConversationStore) BumpPreview(peerID domain.PeerID, content string, at time.Time) error {
	s.guard.CancelPending()

	s.mu.Lock()
	i := s.indexLocked(peerID)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("bump preview for %s: %w", peerID, domain.ErrPeerNotFound)
	}
	peer := s.peers[i]
	peer.LastMessagePreview = content
	peer.LastMessageTime = at
	s.peers = append(s.peers[:i], s.peers[i+1:]...)
	s.peers = append([]domain.Peer{peer}, s.peers...)
	s.mu.Unlock()

	s.publish()
	return nil
}

// SelectPeer makes peerID the active conversation. Reselecting the active peer
// is a no-op; switching clears the peer's unread counter and fetches its
// conversation through loader right away. It reports whether the selection changed.
func (s *ConversationStore) SelectPeer(ctx context.Context, peerID domain.PeerID, loader ConversationLoader) (bool, error) {
	s.mu.Lock()
	if s.selected == peerID {
		s.mu.Unlock()
		return false, nil
	}
	s.selected = peerID
	s.mu.Unlock()

	s.ClearUnread(ctx, peerID)
	s.publish()

	if loader == nil {
		return true, nil
	}
	if err := loader.Load(ctx, peerID); err != nil {
		return true, fmt.Errorf("load conversation %s: %w", peerID, err)
	}
	return true, nil
}

// Deselect drops the active conversation, typically when the chat widget closes.
func (s *ConversationStore) Deselect() {
	s.mu.Lock()
	changed := s.selected != ""
	s.selected = ""
	s.mu.Unlock()

	if changed {
		s.publish()
	}
}

// OpenChat adds a peer the server has not listed yet so a conversation can start with it.
// Known peers are returned unchanged.
func (s *ConversationStore) OpenChat(peer domain.Peer) domain.Peer {
	s.mu.Lock()
	if i := s.indexLocked(peer.ID); i >= 0 {
		existing := s.peers[i]
		s.mu.Unlock()
		return existing
	}
	peer.Local = true
	peer.UnreadCount = 0
	s.peers = append([]domain.Peer{peer}, s.peers...)
	s.mu.Unlock()

	s.publish()
	return peer
}

// MarkAllRead zeroes every counter and fires a best-effort mark-all-read.
func (s *ConversationStore) MarkAllRead(ctx context.Context) {
	s.guard.CancelPending()

	s.mu.Lock()
	changed := false
	for i := range s.peers {
		if s.peers[i].UnreadCount != 0 {
			s.peers[i].UnreadCount = 0
			changed = true
		}
	}
	s.mu.Unlock()

	if changed {
		s.publish()
	}

	s.background.Add(1)
	go func() {
		defer s.background.Done()
		if err := s.api.MarkAllRead(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn().Err(err).Msg("mark all conversations read failed; local state kept")
		}
	}()
}

func (s *ConversationStore) Peers() []domain.Peer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePeers(s.peers)
}

func (s *ConversationStore) Peer(id domain.PeerID) (domain.Peer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.peers[i], true
	}
	return domain.Peer{}, false
}

func (s *ConversationStore) Selected() domain.PeerID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Loaded reports whether at least one authoritative peer list was committed.
func (s *ConversationStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// UnreadTotal is computed from the live peer list on every call.
func (s *ConversationStore) UnreadTotal() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.SumUnread(s.peers)
}

func (s *ConversationStore) Snapshot() ConversationSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ConversationSnapshot{
		Peers:       clonePeers(s.peers),
		Selected:    s.selected,
		UnreadTotal: domain.SumUnread(s.peers),
	}
}

// Subscribe registers fn for every mutation. The returned func unsubscribes.
func (s *ConversationStore) Subscribe(fn func(ConversationSnapshot)) func() {
	return s.listeners.add(fn)
}

// Close aborts an in-flight refresh; later responses are dropped.
func (s *ConversationStore) Close() {
	s.guard.Close()
}

// Wait blocks until fire-and-forget read receipts have returned.
func (s *ConversationStore) Wait() {
	s.background.Wait()
}

func (s *ConversationStore) markReadInBackground(ctx context.Context, peerID domain.PeerID) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		if err := s.api.MarkPeerRead(context.WithoutCancel(ctx), peerID); err != nil {
			s.logger.Warn().Err(err).Str("peer", string(peerID)).Msg("mark conversation read failed; local state kept")
		}
	}()
}

// publish snapshots under publishMu so subscribers never observe an older
// state after a newer one.
func (s *ConversationStore) publish() {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	s.listeners.notify(s.Snapshot())
}

func (s *ConversationStore) indexLocked(id domain.PeerID) int {
	if id == "" {
		return -1
	}
	for i := range s.peers {
		if s.peers[i].ID == id {
			return i
		}
	}
	return -1
}

func mergePeers(server []domain.Peer, current []domain.Peer) []domain.Peer {
	merged := make([]domain.Peer, 0, len(server)+1)
	seen := make(map[domain.PeerID]struct{}, len(server))

	for _, peer := range server {
		if peer.ID == "" {
			continue
		}
		if _, ok := seen[peer.ID]; ok {
			continue
		}
		seen[peer.ID] = struct{}{}
		peer.UnreadCount = domain.ClampUnread(peer.UnreadCount)
		peer.Local = false
		merged = append(merged, peer)
	}

	for _, peer := range current {
		if !peer.Local {
			continue
		}
		if _, ok := seen[peer.ID]; ok {
			continue
		}
		merged = append(merged, peer)
	}

	return merged
}

func clonePeers(peers []domain.Peer) []domain.Peer {
	out := make([]domain.Peer, len(peers))
	copy(out, peers)
	return out
}
