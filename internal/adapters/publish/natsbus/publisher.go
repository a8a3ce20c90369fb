// Package natsbus publishes unread changes on a NATS subject.
package natsbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/community-inbox/internal/adapters/publish"
	"github.com/bnema/community-inbox/internal/domain"
	"github.com/bnema/community-inbox/internal/logging"
	"github.com/bnema/community-inbox/internal/ports"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const connectTimeout = 5 * time.Second

type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

type Publisher struct {
	conn    conn
	subject string
	logger  zerolog.Logger
}

var _ ports.EventPublisher = (*Publisher)(nil)

// Connect dials url and keeps reconnecting in the background while the process runs.
func Connect(url string, subject string) (*Publisher, error) {
	if url == "" {
		return nil, errors.New("nats url is empty")
	}
	if subject == "" {
		return nil, errors.New("nats subject is empty")
	}

	logger := logging.Component("publish.nats")
	nc, err := nats.Connect(url,
		nats.Name("inbox"),
		nats.Timeout(connectTimeout),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("disconnected from nats")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("reconnected to nats")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	return newPublisher(nc, subject, logger), nil
}

func newPublisher(c conn, subject string, logger zerolog.Logger) *Publisher {
	return &Publisher{conn: c, subject: subject, logger: logger}
}

func (p *Publisher) Name() string {
	return "nats"
}

// Publish sends the envelope and waits for the server to acknowledge the flush.
func (p *Publisher) Publish(ctx context.Context, event domain.UnreadEvent) error {
	data, envelope, err := publish.Encode(event)
	if err != nil {
		return err
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", p.subject, err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", p.subject, err)
	}

	p.logger.Debug().Str("subject", p.subject).Str("id", envelope.Meta.ID).Msg("unread event published")
	return nil
}

func (p *Publisher) Close() error {
	p.conn.Close()
	return nil
}
