package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bnema/community-inbox/internal/adapters/publish"
	"github.com/bnema/community-inbox/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subject    string
	data       []byte
	publishErr error
	flushErr   error
	flushed    bool
	closed     bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	c.subject = subject
	c.data = data
	return c.publishErr
}

func (c *fakeConn) FlushWithContext(context.Context) error {
	c.flushed = true
	return c.flushErr
}

func (c *fakeConn) Close() {
	c.closed = true
}

func event() domain.UnreadEvent {
	return domain.UnreadEvent{Profile: "work", Badge: 3, At: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)}
}

func TestPublisherSendsEnvelopeAndFlushes(t *testing.T) {
	conn := &fakeConn{}
	publisher := newPublisher(conn, "inbox.unread", zerolog.Nop())

	require.NoError(t, publisher.Publish(context.Background(), event()))

	assert.Equal(t, "inbox.unread", conn.subject)
	assert.True(t, conn.flushed)

	var envelope publish.Envelope
	require.NoError(t, json.Unmarshal(conn.data, &envelope))
	assert.Equal(t, publish.EventTypeUnreadChanged, envelope.Meta.Type)
	assert.Equal(t, 3, envelope.Data.Badge)
}

func TestPublisherReportsFailures(t *testing.T) {
	publishErr := errors.New("connection closed")
	publisher := newPublisher(&fakeConn{publishErr: publishErr}, "inbox.unread", zerolog.Nop())
	require.ErrorIs(t, publisher.Publish(context.Background(), event()), publishErr)

	flushErr := context.DeadlineExceeded
	publisher = newPublisher(&fakeConn{flushErr: flushErr}, "inbox.unread", zerolog.Nop())
	require.ErrorIs(t, publisher.Publish(context.Background(), event()), flushErr)
}

func TestPublisherCloseClosesConnection(t *testing.T) {
	conn := &fakeConn{}
	require.NoError(t, newPublisher(conn, "inbox.unread", zerolog.Nop()).Close())
	assert.True(t, conn.closed)
}

func TestConnectValidatesArguments(t *testing.T) {
	_, err := Connect("", "inbox.unread")
	require.Error(t, err)

	_, err = Connect("nats://127.0.0.1:4222", "")
	require.Error(t, err)
}
