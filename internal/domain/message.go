package domain

import (
	"slices"
	"strings"
	"time"
)

type MessageID string

// LocalMessagePrefix prefixes ids assigned to optimistic messages before the server confirms them.
const LocalMessagePrefix = "local-"

type Message struct {
	ID              MessageID
	SenderID        PeerID
	SenderName      string
	SenderAvatarRef string
	Content         string
	CreatedAt       time.Time
	IsRead          bool
	Local           bool
}

func (id MessageID) IsLocal() bool {
	return strings.HasPrefix(string(id), LocalMessagePrefix)
}

// SortMessages orders messages by creation time, keeping arrival order for equal timestamps.
func SortMessages(messages []Message) {
	slices.SortStableFunc(messages, func(a, b Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}
