package announcer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/execution-hub/contest-hub/internal/domain/contest"
	"github.com/execution-hub/contest-hub/internal/domain/notification"
)

var (
	ErrUnknownMessage = errors.New("announcement message not found")
	ErrClosed         = errors.New("announcement no longer accepts entrants")
	ErrMissingEntrant = errors.New("entrant id is required")
	ErrReservedID     = errors.New("entrant id is reserved")
)

// Broadcast announces contests as events on the SSE hub. Posted messages are
// tracked in memory; entrants live in the EntrantBook.
type Broadcast struct {
	hub      notification.SSEHub
	book     EntrantBook
	baseURL  string
	mu       sync.RWMutex
	messages map[string]contest.Content
	deleted  map[string]struct{}
	selfID   string
	logger   zerolog.Logger
}

// Option configures a Broadcast.
type Option func(*Broadcast)

// WithSystemIdentity sets the id that may never register as an entrant.
func WithSystemIdentity(id string) Option {
	return func(b *Broadcast) {
		if id = strings.TrimSpace(id); id != "" {
			b.selfID = id
		}
	}
}

// NewBroadcast creates an announcer. baseURL prefixes message links.
func NewBroadcast(hub notification.SSEHub, book EntrantBook, baseURL string, logger zerolog.Logger, opts ...Option) *Broadcast {
	b := &Broadcast{
		hub:      hub,
		book:     book,
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		messages: make(map[string]contest.Content),
		deleted:  make(map[string]struct{}),
		selfID:   contest.DefaultSystemIdentity,
		logger:   logger.With().Str("service", "announcer").Logger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type announcement struct {
	MessageID string          `json:"messageId"`
	URL       string          `json:"url,omitempty"`
	Content   contest.Content `json:"content"`
}

func (b *Broadcast) Post(ctx context.Context, content contest.Content) (contest.AnnouncementRef, error) {
	if strings.TrimSpace(content.Title) == "" {
		return contest.AnnouncementRef{}, fmt.Errorf("announcement title is required")
	}
	ref := contest.AnnouncementRef{
		Channel:   content.Channel,
		MessageID: uuid.NewString(),
	}
	if b.baseURL != "" && content.ContestID != "" {
		ref.URL = b.baseURL + "/v1/contests/" + content.ContestID
	}

	b.mu.Lock()
	b.messages[ref.MessageID] = content
	b.mu.Unlock()

	if err := b.publish(notification.EventPosted, ref, content); err != nil {
		return contest.AnnouncementRef{}, err
	}
	b.logger.Debug().Str("contest_id", content.ContestID).Str("message_id", ref.MessageID).Msg("announcement posted")
	return ref, nil
}

// Edit replaces the content of a message. Messages posted by an earlier
// process are adopted; deleted ones are gone for good.
func (b *Broadcast) Edit(ctx context.Context, ref contest.AnnouncementRef, content contest.Content) error {
	if ref.MessageID == "" {
		return fmt.Errorf("%w: empty message id", ErrUnknownMessage)
	}
	b.mu.Lock()
	if _, gone := b.deleted[ref.MessageID]; gone {
		b.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownMessage, ref.MessageID)
	}
	b.messages[ref.MessageID] = content
	b.mu.Unlock()
	return b.publish(notification.EventEdited, ref, content)
}

func (b *Broadcast) Delete(ctx context.Context, ref contest.AnnouncementRef) error {
	b.mu.Lock()
	content, ok := b.messages[ref.MessageID]
	delete(b.messages, ref.MessageID)
	b.deleted[ref.MessageID] = struct{}{}
	b.mu.Unlock()

	if err := b.book.Clear(ctx, ref.MessageID); err != nil {
		b.logger.Warn().Err(err).Str("message_id", ref.MessageID).Msg("clear entrants failed")
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMessage, ref.MessageID)
	}
	return b.publish(notification.EventDeleted, ref, content)
}

func (b *Broadcast) FetchEntrants(ctx context.Context, ref contest.AnnouncementRef) ([]contest.Entrant, error) {
	return b.book.List(ctx, ref.MessageID)
}

// Register records an entrant on an open announcement. Messages unknown to
// this process, such as those posted before a restart, accept entrants.
func (b *Broadcast) Register(ctx context.Context, ref contest.AnnouncementRef, e contest.Entrant) error {
	e.ID = strings.TrimSpace(e.ID)
	if e.ID == "" {
		return ErrMissingEntrant
	}
	if e.ID == b.selfID {
		return fmt.Errorf("%w: %s", ErrReservedID, e.ID)
	}
	b.mu.RLock()
	content, known := b.messages[ref.MessageID]
	b.mu.RUnlock()
	if known && content.Closed {
		return ErrClosed
	}
	if err := b.book.Add(ctx, ref.MessageID, e); err != nil {
		return fmt.Errorf("record entrant: %w", err)
	}
	data, err := json.Marshal(map[string]string{"messageId": ref.MessageID, "entrantId": e.ID})
	if err != nil {
		return err
	}
	b.hub.BroadcastToChannel(ref.Channel, notification.NewSSEMessage(notification.EventEntered, ref.Channel, data))
	return nil
}

// Content returns the latest rendering of a posted message.
func (b *Broadcast) Content(messageID string) (contest.Content, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.messages[messageID]
	return c, ok
}

func (b *Broadcast) publish(event string, ref contest.AnnouncementRef, content contest.Content) error {
	data, err := json.Marshal(announcement{MessageID: ref.MessageID, URL: ref.URL, Content: content})
	if err != nil {
		return fmt.Errorf("marshal announcement: %w", err)
	}
	b.hub.BroadcastToChannel(ref.Channel, notification.NewSSEMessage(event, ref.Channel, data))
	return nil
}
