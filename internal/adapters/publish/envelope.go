// Package publish carries unread-change events to sinks outside the process.
package publish

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bnema/community-inbox/internal/domain"
	"github.com/google/uuid"
)

const (
	EventTypeUnreadChanged = "inbox.unread.changed.v1"
	producer               = "inbox"
)

type Meta struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Time     time.Time `json:"time"`
	Producer string    `json:"producer"`
	Profile  string    `json:"profile"`
}

type Envelope struct {
	Meta Meta          `json:"meta"`
	Data UnreadPayload `json:"data"`
}

type UnreadPayload struct {
	Badge      int            `json:"badge"`
	Counts     Counts         `json:"counts"`
	PeerUnread map[string]int `json:"peer_unread"`
}

type Counts struct {
	Reply   int `json:"reply"`
	Mention int `json:"mention"`
	Message int `json:"message"`
	System  int `json:"system"`
	Total   int `json:"total"`
}

func NewEnvelope(event domain.UnreadEvent) Envelope {
	peers := make(map[string]int, len(event.PeerUnread))
	for id, count := range event.PeerUnread {
		peers[string(id)] = count
	}

	return Envelope{
		Meta: Meta{
			ID:       uuid.NewString(),
			Type:     EventTypeUnreadChanged,
			Time:     event.At.UTC(),
			Producer: producer,
			Profile:  string(event.Profile),
		},
		Data: UnreadPayload{
			Badge: event.Badge,
			Counts: Counts{
				Reply:   event.Counts.Reply,
				Mention: event.Counts.Mention,
				Message: event.Counts.Message,
				System:  event.Counts.System,
				Total:   event.Counts.Total,
			},
			PeerUnread: peers,
		},
	}
}

// Encode wraps event in an envelope and marshals it. The envelope id is returned for broker headers.
func Encode(event domain.UnreadEvent) ([]byte, Envelope, error) {
	envelope := NewEnvelope(event)
	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, Envelope{}, fmt.Errorf("encode unread event: %w", err)
	}
	return data, envelope, nil
}
