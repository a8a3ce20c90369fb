// Package redismirror keeps the latest unread envelope in Redis and announces changes on a channel.
package redismirror

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/community-inbox/internal/adapters/publish"
	"github.com/bnema/community-inbox/internal/domain"
	"github.com/bnema/community-inbox/internal/logging"
	"github.com/bnema/community-inbox/internal/ports"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type commands interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type Options struct {
	Addr     string
	Password string
	DB       int
	// Key prefixes the per-profile snapshot key, stored as "<Key>:<profile>".
	Key     string
	Channel string
	TTL     time.Duration
}

type Mirror struct {
	client commands
	opts   Options
	logger zerolog.Logger
	close  func() error
}

var _ ports.EventPublisher = (*Mirror)(nil)

func New(opts Options) (*Mirror, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis addr is empty")
	}
	if opts.Key == "" {
		return nil, errors.New("redis key is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	mirror := newMirror(client, opts, logging.Component("publish.redis"))
	mirror.close = client.Close
	return mirror, nil
}

func newMirror(client commands, opts Options, logger zerolog.Logger) *Mirror {
	return &Mirror{client: client, opts: opts, logger: logger}
}

func (m *Mirror) Name() string {
	return "redis"
}

// Publish overwrites the profile snapshot and, when a channel is configured, announces it.
func (m *Mirror) Publish(ctx context.Context, event domain.UnreadEvent) error {
	data, envelope, err := publish.Encode(event)
	if err != nil {
		return err
	}

	key := m.opts.Key + ":" + string(event.Profile)
	if err := m.client.Set(ctx, key, data, m.opts.TTL).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	if m.opts.Channel != "" {
		if err := m.client.Publish(ctx, m.opts.Channel, data).Err(); err != nil {
			return fmt.Errorf("publish to %s: %w", m.opts.Channel, err)
		}
	}

	m.logger.Debug().Str("key", key).Str("id", envelope.Meta.ID).Msg("unread snapshot mirrored")
	return nil
}

func (m *Mirror) Close() error {
	if m.close == nil {
		return nil
	}
	return m.close()
}
