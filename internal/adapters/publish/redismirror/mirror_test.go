package redismirror

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bnema/community-inbox/internal/adapters/publish"
	"github.com/bnema/community-inbox/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	sets       map[string][]byte
	ttl        time.Duration
	published  map[string][]byte
	setErr     error
	publishErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{sets: map[string][]byte{}, published: map[string][]byte{}}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.sets[key] = value.([]byte)
	f.ttl = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	if f.publishErr != nil {
		return redis.NewIntResult(0, f.publishErr)
	}
	f.published[channel] = message.([]byte)
	return redis.NewIntResult(1, nil)
}

func event() domain.UnreadEvent {
	return domain.UnreadEvent{Profile: "work", Badge: 4, At: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)}
}

func TestMirrorStoresSnapshotAndAnnounces(t *testing.T) {
	client := newFakeRedis()
	mirror := newMirror(client, Options{Key: "inbox:unread", Channel: "inbox.unread", TTL: 10 * time.Minute}, zerolog.Nop())

	require.NoError(t, mirror.Publish(context.Background(), event()))

	stored, ok := client.sets["inbox:unread:work"]
	require.True(t, ok)
	assert.Equal(t, 10*time.Minute, client.ttl)
	assert.Equal(t, stored, client.published["inbox.unread"])

	var envelope publish.Envelope
	require.NoError(t, json.Unmarshal(stored, &envelope))
	assert.Equal(t, 4, envelope.Data.Badge)
	assert.Equal(t, "work", envelope.Meta.Profile)
}

func TestMirrorWithoutChannelOnlyStores(t *testing.T) {
	client := newFakeRedis()
	mirror := newMirror(client, Options{Key: "inbox:unread"}, zerolog.Nop())

	require.NoError(t, mirror.Publish(context.Background(), event()))
	assert.Len(t, client.sets, 1)
	assert.Empty(t, client.published)
}

func TestMirrorReportsFailures(t *testing.T) {
	setErr := errors.New("READONLY")
	client := newFakeRedis()
	client.setErr = setErr
	mirror := newMirror(client, Options{Key: "inbox:unread", Channel: "inbox.unread"}, zerolog.Nop())
	require.ErrorIs(t, mirror.Publish(context.Background(), event()), setErr)

	publishErr := errors.New("connection reset")
	client = newFakeRedis()
	client.publishErr = publishErr
	mirror = newMirror(client, Options{Key: "inbox:unread", Channel: "inbox.unread"}, zerolog.Nop())
	require.ErrorIs(t, mirror.Publish(context.Background(), event()), publishErr)
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(Options{Key: "inbox:unread"})
	require.Error(t, err)

	_, err = New(Options{Addr: "127.0.0.1:6379"})
	require.Error(t, err)

	mirror, err := New(Options{Addr: "127.0.0.1:6379", Key: "inbox:unread"})
	require.NoError(t, err)
	require.NoError(t, mirror.Close())
}
