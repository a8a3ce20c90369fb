package ports

import (
	"context"

	"github.com/bnema/community-inbox/internal/domain"
)

// MessagingAPI is the private-message surface of the community server.
type MessagingAPI interface {
	ListPeers(ctx context.Context) ([]domain.Peer, error)
	Conversation(ctx context.Context, peerID domain.PeerID) ([]domain.Message, error)
	SendMessage(ctx context.Context, peerID domain.PeerID, content string) (domain.MessageID, error)
	MarkPeerRead(ctx context.Context, peerID domain.PeerID) error
	MarkAllRead(ctx context.Context) error
}

type NotificationAPI interface {
	UnreadCounts(ctx context.Context) (domain.NotificationCounts, error)
	MarkCategoryRead(ctx context.Context, category domain.Category) error
}
