package ports

import (
	"context"

	"github.com/bnema/community-inbox/internal/domain"
)

// EventPublisher forwards unread changes to an external sink (log, broker, cache).
type EventPublisher interface {
	Name() string
	Publish(ctx context.Context, event domain.UnreadEvent) error
}
