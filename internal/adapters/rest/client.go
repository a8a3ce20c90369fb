// Package rest talks to the community server's messaging and notification endpoints.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/community-inbox/internal/domain"
	"github.com/bnema/community-inbox/internal/logging"
	"github.com/bnema/community-inbox/internal/ports"
	"github.com/rs/zerolog"
)

const (
	maxResponseBytes      = 1 << 20
	maxErrorSnippetBytes  = 256
	defaultRequestTimeout = 15 * time.Second
)

type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	Session        ports.SessionSource
	RequestTimeout time.Duration
}

var (
	_ ports.MessagingAPI    = (*Client)(nil)
	_ ports.NotificationAPI = (*Client)(nil)
)

func NewClient(baseURL string, session ports.SessionSource, timeout time.Duration) *Client {
	return &Client{
		BaseURL:        baseURL,
		HTTPClient:     &http.Client{},
		Session:        session,
		RequestTimeout: timeout,
	}
}

// StatusError is a non-success response other than an auth failure.
type StatusError struct {
	Method string
	Path   string
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Detail)
}

func (c *Client) ListPeers(ctx context.Context) ([]domain.Peer, error) {
	var payload []peerPayload
	if err := c.do(ctx, http.MethodGet, "/messages/users", nil, &payload); err != nil {
		return nil, fmt.Errorf("list peers: %w", err)
	}

	peers := make([]domain.Peer, 0, len(payload))
	for _, entry := range payload {
		peer := entry.toDomain()
		if peer.ID == "" {
			c.log(ctx).Debug().Msg("peer without id skipped")
			continue
		}
		peers = append(peers, peer)
	}
	return peers, nil
}

func (c *Client) Conversation(ctx context.Context, peerID domain.PeerID) ([]domain.Message, error) {
	var payload []messagePayload
	if err := c.do(ctx, http.MethodGet, "/messages/conversation/"+url.PathEscape(string(peerID)), nil, &payload); err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", peerID, err)
	}

	messages := make([]domain.Message, 0, len(payload))
	for _, entry := range payload {
		messages = append(messages, entry.toDomain())
	}
	domain.SortMessages(messages)
	return messages, nil
}

func (c *Client) SendMessage(ctx context.Context, peerID domain.PeerID, content string) (domain.MessageID, error) {
	var payload sendResponse
	body := sendRequest{Content: content, ReceiverID: string(peerID)}
	if err := c.do(ctx, http.MethodPost, "/messages", body, &payload); err != nil {
		return "", fmt.Errorf("send message to %s: %w", peerID, err)
	}

	id := payload.ID
	if id == "" {
		id = payload.MessageID
	}
	return domain.MessageID(id), nil
}

func (c *Client) MarkPeerRead(ctx context.Context, peerID domain.PeerID) error {
	if err := c.do(ctx, http.MethodPut, "/messages/mark-read/"+url.PathEscape(string(peerID)), nil, nil); err != nil {
		return fmt.Errorf("mark %s read: %w", peerID, err)
	}
	return nil
}

func (c *Client) MarkAllRead(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPut, "/messages/mark-all-read", nil, nil); err != nil {
		return fmt.Errorf("mark all messages read: %w", err)
	}
	return nil
}

func (c *Client) UnreadCounts(ctx context.Context) (domain.NotificationCounts, error) {
	var payload countsPayload
	if err := c.do(ctx, http.MethodGet, "/notifications/unread-count", nil, &payload); err != nil {
		return domain.NotificationCounts{}, fmt.Errorf("fetch unread counts: %w", err)
	}
	return payload.toDomain(), nil
}

func (c *Client) MarkCategoryRead(ctx context.Context, category domain.Category) error {
	body := markCategoryRequest{Type: string(category)}
	if err := c.do(ctx, http.MethodPut, "/notifications/mark-read", body, nil); err != nil {
		return fmt.Errorf("mark %s notifications read: %w", category, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method string, path string, body any, out any) error {
	token, err := c.Session.Token(ctx)
	if err != nil {
		return err
	}

	endpoint, err := buildAPIURL(c.BaseURL, path)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.log(ctx).Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("request finished")

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, domain.ErrSessionExpired)
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Detail: errorDetail(data)}
	}

	if out == nil {
		return nil
	}
	payload := unwrapEnvelope(data)
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// log tags the caller's logger, a poll schedule's when there is one, with the adapter name.
func (c *Client) log(ctx context.Context) *zerolog.Logger {
	logger := logging.FromContext(ctx).With().Str("adapter", "rest").Logger()
	return &logger
}

func errorDetail(data []byte) string {
	var payload errorPayload
	if err := json.Unmarshal(unwrapEnvelope(data), &payload); err == nil {
		if payload.Message != "" {
			return logging.Redact(payload.Message)
		}
		if payload.Error != "" {
			return logging.Redact(payload.Error)
		}
	}

	snippet := strings.TrimSpace(string(data))
	if len(snippet) > maxErrorSnippetBytes {
		snippet = snippet[:maxErrorSnippetBytes]
	}
	return logging.Redact(snippet)
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	return strings.TrimSuffix(parsed.String(), "/") + path, nil
}
