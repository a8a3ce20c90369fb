package domain

import "time"

type PeerID string

// Peer is the other party of a one-to-one conversation as listed by the server.
type Peer struct {
	ID                 PeerID
	DisplayName        string
	AvatarRef          string
	LastMessagePreview string
	LastMessageTime    time.Time
	UnreadCount        int
	// Local marks a peer opened directly from a profile that the server has not listed yet.
	Local bool
}

// ClampUnread keeps unread counters non-negative whatever the source reported.
func ClampUnread(count int) int {
	if count < 0 {
		return 0
	}
	return count
}

func SumUnread(peers []Peer) int {
	total := 0
	for _, peer := range peers {
		total += ClampUnread(peer.UnreadCount)
	}
	return total
}
