package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bnema/community-inbox/internal/domain"
	"github.com/bnema/community-inbox/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	session := mocks.NewMockSessionSource(t)
	session.EXPECT().Token(mock.Anything).Return("tok-123456", nil).Maybe()

	return NewClient(server.URL, session, time.Second)
}

func TestClientListPeersDecodesFlexiblePayload(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/messages/users", r.URL.Path)
		assert.Equal(t, "Bearer tok-123456", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[
			{"id":17,"username":"alice","avatar":"a.png","last_message":"hi","last_message_time":"2026-03-14T09:30:00Z","unread_count":5},
			{"user_id":"bob","display_name":"Bob","avatar_url":"b.png","last_message_time":null,"unread_count":-2},
			{"username":"ghost"}
		]}`))
	})

	peers, err := client.ListPeers(context.Background())
	require.NoError(t, err)
	require.Len(t, peers, 2)

	assert.Equal(t, domain.Peer{
		ID:                 "17",
		DisplayName:        "alice",
		AvatarRef:          "a.png",
		LastMessagePreview: "hi",
		LastMessageTime:    time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		UnreadCount:        5,
	}, peers[0])
	assert.Equal(t, domain.PeerID("bob"), peers[1].ID)
	assert.Equal(t, "Bob", peers[1].DisplayName)
	assert.Zero(t, peers[1].UnreadCount)
	assert.True(t, peers[1].LastMessageTime.IsZero())
}

func TestClientConversationSortsMessages(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages/conversation/alice", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id":2,"sender_id":"me","content":"second","created_at":"2026-03-14T09:31:00Z"},
			{"id":"1","sender_id":"alice","sender_name":"Alice","content":"first","created_at":1773480600,"is_read":true}
		]`))
	})

	messages, err := client.Conversation(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, domain.MessageID("1"), messages[0].ID)
	assert.Equal(t, "Alice", messages[0].SenderName)
	assert.True(t, messages[0].IsRead)
	assert.Equal(t, domain.MessageID("2"), messages[1].ID)
}

func TestClientSendMessagePostsContent(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"content": "hello", "receiver_id": "alice"}, body)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":991}}`))
	})

	id, err := client.SendMessage(context.Background(), "alice", "hello")
	require.NoError(t, err)
	assert.Equal(t, domain.MessageID("991"), id)
}

func TestClientMarkReadEndpoints(t *testing.T) {
	t.Parallel()

	var calls []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		calls = append(calls, r.URL.Path)
		if r.URL.Path == "/notifications/mark-read" {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "reply", body["type"])
		}
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.MarkPeerRead(context.Background(), "alice"))
	require.NoError(t, client.MarkAllRead(context.Background()))
	require.NoError(t, client.MarkCategoryRead(context.Background(), domain.CategoryReply))
	assert.Equal(t, []string{"/messages/mark-read/alice", "/messages/mark-all-read", "/notifications/mark-read"}, calls)
}

func TestClientUnreadCounts(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notifications/unread-count", r.URL.Path)
		_, _ = w.Write([]byte(`{"reply":2,"mention":0,"message":3,"system":1,"total":6}`))
	})

	counts, err := client.UnreadCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationCounts{Reply: 2, Message: 3, System: 1, Total: 6}, counts)
}

func TestClientMapsAuthFailures(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		_, err := client.ListPeers(context.Background())
		require.ErrorIs(t, err, domain.ErrSessionExpired)
		assert.True(t, domain.IsAuthFailure(err))
	}
}

func TestClientStatusErrorRedactsBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"upstream rejected Bearer tok-123456"}`))
	})

	_, err := client.UnreadCounts(context.Background())
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.Status)
	assert.NotContains(t, err.Error(), "tok-123456")
	assert.False(t, domain.IsAuthFailure(err))
}

func TestClientWithoutSessionDoesNotCallServer(t *testing.T) {
	t.Parallel()

	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(server.Close)

	session := mocks.NewMockSessionSource(t)
	session.EXPECT().Token(mock.Anything).Return("", domain.ErrUnauthenticated).Once()

	err := NewClient(server.URL, session, time.Second).MarkAllRead(context.Background())
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.False(t, called)
}

func TestClientHonoursCancellation(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := client.ListPeers(ctx)
	require.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestBuildAPIURLRejectsInvalidBase(t *testing.T) {
	t.Parallel()

	for _, base := range []string{"", "ftp://example.com", "https://"} {
		_, err := buildAPIURL(base, "/messages")
		require.Error(t, err, base)
	}

	endpoint, err := buildAPIURL("https://community.example/api/", "/messages/users")
	require.NoError(t, err)
	assert.Equal(t, "https://community.example/api/messages/users", endpoint)
}
