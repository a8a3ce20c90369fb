// Package amqpbus publishes unread changes to a RabbitMQ topic exchange.
package amqpbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/community-inbox/internal/adapters/publish"
	"github.com/bnema/community-inbox/internal/domain"
	"github.com/bnema/community-inbox/internal/logging"
	"github.com/bnema/community-inbox/internal/ports"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type Publisher struct {
	exchange   string
	routingKey string
	logger     zerolog.Logger
	closeConn  func() error

	mu      sync.Mutex
	channel channel
}

var _ ports.EventPublisher = (*Publisher)(nil)

// Dial connects to url and declares a durable topic exchange.
func Dial(url, exchange, routingKey string) (*Publisher, error) {
	if url == "" {
		return nil, errors.New("amqp url is empty")
	}
	if exchange == "" || routingKey == "" {
		return nil, errors.New("amqp exchange and routing key are required")
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	publisher := newPublisher(ch, exchange, routingKey, logging.Component("publish.amqp"))
	publisher.closeConn = conn.Close
	return publisher, nil
}

func newPublisher(ch channel, exchange, routingKey string, logger zerolog.Logger) *Publisher {
	return &Publisher{
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
		channel:    ch,
	}
}

func (p *Publisher) Name() string {
	return "amqp"
}

func (p *Publisher) Publish(ctx context.Context, event domain.UnreadEvent) error {
	body, envelope, err := publish.Encode(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return errors.New("amqp publisher closed")
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Transient,
		MessageId:    envelope.Meta.ID,
		Type:         envelope.Meta.Type,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish to %s/%s: %w", p.exchange, p.routingKey, err)
	}

	p.logger.Debug().Str("exchange", p.exchange).Str("key", p.routingKey).Str("id", envelope.Meta.ID).Msg("unread event published")
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	ch := p.channel
	p.channel = nil
	p.mu.Unlock()

	var errs []error
	if ch != nil {
		errs = append(errs, ch.Close())
	}
	if p.closeConn != nil {
		errs = append(errs, p.closeConn())
	}
	return errors.Join(errs...)
}
