package notification

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event names published for announcements.
const (
	EventPosted  = "announcement.posted"
	EventEdited  = "announcement.edited"
	EventDeleted = "announcement.deleted"
	EventEntered = "entrant.joined"
)

var (
	ErrClientNotFound = errors.New("SSE client not found")
	ErrChannelFull    = errors.New("SSE message channel full")
)

// SSEClient is an open stream subscribed to zero or more announcement
// channels. A client without channels receives everything.
type SSEClient struct {
	ClientID    string
	Channels    []string
	ConnectedAt time.Time
	MessageChan chan *SSEMessage
}

// NewSSEClient creates a new SSE client.
func NewSSEClient(clientID string, channels []string) *SSEClient {
	return &SSEClient{
		ClientID:    clientID,
		Channels:    channels,
		ConnectedAt: time.Now().UTC(),
		MessageChan: make(chan *SSEMessage, 100),
	}
}

// Close closes the client's message channel.
func (c *SSEClient) Close() {
	close(c.MessageChan)
}

// Wants reports whether the client subscribed to channel.
func (c *SSEClient) Wants(channel string) bool {
	if len(c.Channels) == 0 || channel == "" {
		return true
	}
	for _, ch := range c.Channels {
		if ch == channel {
			return true
		}
	}
	return false
}

// SSEMessage is one event written to a stream.
type SSEMessage struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	Channel   string          `json:"channel,omitempty"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewSSEMessage creates a new SSE message.
func NewSSEMessage(event, channel string, data json.RawMessage) *SSEMessage {
	return &SSEMessage{
		ID:        uuid.New().String(),
		Event:     event,
		Channel:   channel,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}
