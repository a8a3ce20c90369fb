package application

import (
	"time"

	"github.com/bnema/community-inbox/internal/domain"
	"github.com/stretchr/testify/mock"
)

func mockAnyContext() interface{} {
	return mock.Anything
}

var fixtureTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func fixturePeers() []domain.Peer {
	return []domain.Peer{
		{ID: "alice", DisplayName: "Alice", LastMessagePreview: "see you", LastMessageTime: fixtureTime, UnreadCount: 5},
		{ID: "bob", DisplayName: "Bob", LastMessagePreview: "ok", LastMessageTime: fixtureTime.Add(-time.Hour), UnreadCount: 2},
		{ID: "carol", DisplayName: "Carol", LastMessagePreview: "thanks", LastMessageTime: fixtureTime.Add(-2 * time.Hour)},
	}
}

func fixtureMessage(id string, sender domain.PeerID, content string, offset time.Duration) domain.Message {
	return domain.Message{
		ID:        domain.MessageID(id),
		SenderID:  sender,
		Content:   content,
		CreatedAt: fixtureTime.Add(offset),
	}
}
