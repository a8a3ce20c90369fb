package publish

import (
	"context"

	"github.com/bnema/community-inbox/internal/domain"
	"github.com/bnema/community-inbox/internal/ports"
	"github.com/rs/zerolog"
)

// LogSink writes unread changes to a logger. `inbox watch --plain` uses it as its output.
type LogSink struct {
	logger zerolog.Logger
}

var _ ports.EventPublisher = (*LogSink)(nil)

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string {
	return "log"
}

func (s *LogSink) Publish(ctx context.Context, event domain.UnreadEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	peers := zerolog.Dict()
	for id, count := range event.PeerUnread {
		peers.Int(string(id), count)
	}

	s.logger.Info().
		Str("profile", string(event.Profile)).
		Int("badge", event.Badge).
		Int("reply", event.Counts.Reply).
		Int("mention", event.Counts.Mention).
		Int("message", event.Counts.Message).
		Int("system", event.Counts.System).
		Int("total", event.Counts.Total).
		Dict("peers", peers).
		Time("at", event.At).
		Msg("unread changed")
	return nil
}
