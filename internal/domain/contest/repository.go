package contest

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Store,Announcer

import (
	"context"
)

// Store defines durable persistence for contests. It is the single source of
// truth for lifecycle status.
type Store interface {
	LoadAll(ctx context.Context) ([]*Contest, error)
	// Get returns nil, nil when the contest does not exist.
	Get(ctx context.Context, id string) (*Contest, error)
	Upsert(ctx context.Context, c *Contest) (*Contest, error)
	Remove(ctx context.Context, id string) (bool, error)
	FindByAnnouncement(ctx context.Context, messageID string) (*Contest, error)
}

// Field is one labelled value shown on an announcement.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Content is a rendered announcement.
type Content struct {
	ContestID string         `json:"contestId"`
	Channel   string         `json:"channel,omitempty"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Fields    []Field        `json:"fields,omitempty"`
	ImageURL  string         `json:"imageUrl,omitempty"`
	Thumbnail string         `json:"thumbnailUrl,omitempty"`
	Mentions  *MentionPolicy `json:"mentions,omitempty"`
	Closed    bool           `json:"closed,omitempty"`
}

// Announcer posts contests to their public channel and reports who entered.
// Entrant lists may contain bots and duplicates.
type Announcer interface {
	Post(ctx context.Context, content Content) (AnnouncementRef, error)
	Edit(ctx context.Context, ref AnnouncementRef, content Content) error
	Delete(ctx context.Context, ref AnnouncementRef) error
	FetchEntrants(ctx context.Context, ref AnnouncementRef) ([]Entrant, error)
}
