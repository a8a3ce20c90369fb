package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/community-inbox/internal/domain"
)

// flexID accepts ids sent as JSON numbers or strings.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id %s: %w", data, err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("decode id %s: %w", data, err)
	}
	*id = flexID(n.String())
	return nil
}

// flexTime accepts RFC 3339 strings, unix seconds, or null.
type flexTime time.Time

func (t *flexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = flexTime{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*t = flexTime{}
			return nil
		}
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				*t = flexTime(parsed.UTC())
				return nil
			}
		}
		return fmt.Errorf("decode time %q: unsupported layout", s)
	}

	var seconds int64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("decode time %s: %w", data, err)
	}
	*t = flexTime(time.Unix(seconds, 0).UTC())
	return nil
}

type peerPayload struct {
	ID              flexID   `json:"id"`
	UserID          flexID   `json:"user_id"`
	DisplayName     string   `json:"display_name"`
	Username        string   `json:"username"`
	AvatarURL       string   `json:"avatar_url"`
	Avatar          string   `json:"avatar"`
	LastMessage     string   `json:"last_message"`
	LastMessageTime flexTime `json:"last_message_time"`
	UnreadCount     int      `json:"unread_count"`
}

func (p peerPayload) toDomain() domain.Peer {
	id := p.ID
	if id == "" {
		id = p.UserID
	}
	name := p.DisplayName
	if name == "" {
		name = p.Username
	}
	avatar := p.AvatarURL
	if avatar == "" {
		avatar = p.Avatar
	}

	return domain.Peer{
		ID:                 domain.PeerID(id),
		DisplayName:        name,
		AvatarRef:          avatar,
		LastMessagePreview: p.LastMessage,
		LastMessageTime:    time.Time(p.LastMessageTime),
		UnreadCount:        domain.ClampUnread(p.UnreadCount),
	}
}

type messagePayload struct {
	ID           flexID   `json:"id"`
	SenderID     flexID   `json:"sender_id"`
	SenderName   string   `json:"sender_name"`
	SenderAvatar string   `json:"sender_avatar"`
	Content      string   `json:"content"`
	CreatedAt    flexTime `json:"created_at"`
	IsRead       bool     `json:"is_read"`
}

func (m messagePayload) toDomain() domain.Message {
	return domain.Message{
		ID:              domain.MessageID(m.ID),
		SenderID:        domain.PeerID(m.SenderID),
		SenderName:      m.SenderName,
		SenderAvatarRef: m.SenderAvatar,
		Content:         m.Content,
		CreatedAt:       time.Time(m.CreatedAt),
		IsRead:          m.IsRead,
	}
}

type sendRequest struct {
	Content    string `json:"content"`
	ReceiverID string `json:"receiver_id"`
}

type sendResponse struct {
	ID        flexID `json:"id"`
	MessageID flexID `json:"message_id"`
}

type countsPayload struct {
	Reply   int `json:"reply"`
	Mention int `json:"mention"`
	Message int `json:"message"`
	System  int `json:"system"`
	Total   int `json:"total"`
}

func (c countsPayload) toDomain() domain.NotificationCounts {
	return domain.NotificationCounts{
		Reply:   domain.ClampUnread(c.Reply),
		Mention: domain.ClampUnread(c.Mention),
		Message: domain.ClampUnread(c.Message),
		System:  domain.ClampUnread(c.System),
		Total:   domain.ClampUnread(c.Total),
	}
}

type markCategoryRequest struct {
	Type string `json:"type"`
}

type errorPayload struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// unwrapEnvelope returns the "data" member of {"data": ...} bodies and the body itself otherwise.
func unwrapEnvelope(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return trimmed
	}
	data, ok := envelope["data"]
	if !ok || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return trimmed
	}
	return data
}
