package inbox

import (
	"testing"
	"time"

	"github.com/bnema/community-inbox/internal/application"
	"github.com/bnema/community-inbox/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)

func sampleSnapshot() application.Snapshot {
	return application.Snapshot{
		Authenticated: true,
		WidgetOpen:    true,
		Peers: []domain.Peer{
			{ID: "alice", DisplayName: "Alice", LastMessagePreview: "see you at 8", LastMessageTime: now.Add(-5 * time.Minute), UnreadCount: 3},
			{ID: "bob", DisplayName: "", LastMessagePreview: "ok", LastMessageTime: now.Add(-26 * time.Hour)},
			{ID: "zoe", DisplayName: "Zoe", Local: true},
		},
		Selected: "alice",
		Conversation: application.StreamView{
			PeerID: "alice",
			State:  application.StreamLoaded,
			Messages: []domain.Message{
				{ID: "1", SenderID: "alice", SenderName: "Alice", Content: "dinner?", CreatedAt: now.Add(-10 * time.Minute)},
				{ID: "local-1", SenderID: "me", Content: "sure", CreatedAt: now.Add(-time.Minute), Local: true},
				{ID: "local-2", SenderID: "me", Content: "8pm?", CreatedAt: now, Local: true},
			},
			Failed: map[domain.MessageID]bool{"local-2": true},
		},
		Badge:  3,
		Counts: domain.NotificationCounts{Reply: 2, Message: 3, System: 1, Total: 6},
	}
}

func TestRenderFullSnapshot(t *testing.T) {
	output, err := Render(sampleSnapshot(), RenderOptions{Now: now, Self: "me"})
	require.NoError(t, err)

	assert.Contains(t, output, "Inbox (3 unread)")
	assert.Contains(t, output, "reply: 2")
	assert.Contains(t, output, "total: 6")
	assert.Contains(t, output, "conversations: 3")
	assert.Contains(t, output, "Alice")
	assert.Contains(t, output, "[3]")
	assert.Contains(t, output, "5 minutes ago")
	assert.Contains(t, output, "1 day ago")
	assert.Contains(t, output, "bob")
	assert.Contains(t, output, "(new)")
	assert.Contains(t, output, "with Alice")
	assert.Contains(t, output, "Alice: dinner?")
	assert.Contains(t, output, "you: sure [sending]")
	assert.Contains(t, output, "you: 8pm? [not sent]")
}

func TestRenderSectionsSubset(t *testing.T) {
	output, err := Render(sampleSnapshot(), RenderOptions{Now: now, Sections: SectionCounts})
	require.NoError(t, err)

	assert.Contains(t, output, "mention: 0")
	assert.NotContains(t, output, "conversations:")
	assert.NotContains(t, output, "dinner?")
}

func TestRenderEmptyAndSignedOut(t *testing.T) {
	output, err := Render(application.Snapshot{}, RenderOptions{Now: now})
	require.NoError(t, err)

	assert.Contains(t, output, "Inbox")
	assert.Contains(t, output, "Not signed in")
	assert.Contains(t, output, "No conversations yet.")
}

func TestRenderLoadingConversation(t *testing.T) {
	snapshot := sampleSnapshot()
	snapshot.Conversation = application.StreamView{PeerID: "alice", State: application.StreamLoading}

	output, err := Render(snapshot, RenderOptions{Now: now, Sections: SectionConversation})
	require.NoError(t, err)
	assert.Contains(t, output, "loading")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello world", truncate("hello\n  world", 0))
	assert.Equal(t, "hell…", truncate("hello world", 5))
	assert.Equal(t, "hi", truncate("hi", 5))
	assert.Equal(t, "…", truncate("hello", 1))
}

func TestFormatRelative(t *testing.T) {
	assert.Equal(t, "just now", formatRelative(now.Add(-10*time.Second), now))
	assert.Equal(t, "1 minute ago", formatRelative(now.Add(-time.Minute), now))
	assert.Equal(t, "3 hours ago", formatRelative(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2 days ago", formatRelative(now.Add(-50*time.Hour), now))
	assert.Equal(t, "01 Mar", formatRelative(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), now))
}
