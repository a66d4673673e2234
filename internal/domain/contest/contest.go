package contest

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Status represents contest status.
type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// EndReason records why a contest reached the end path.
type EndReason string

const (
	ReasonManual  EndReason = "manual"
	ReasonAuto    EndReason = "auto"
	ReasonReroll  EndReason = "reroll"
	ReasonRemoved EndReason = "removed"
)

// DefaultSystemIdentity is the entrant id the hub uses for itself. It can
// never win.
const DefaultSystemIdentity = "contest-hub"

var (
	ErrNotFound             = errors.New("contest not found")
	ErrMissingID            = errors.New("contest id is required")
	ErrMissingTitle         = errors.New("contest title is required")
	ErrInvalidWinnerCount   = errors.New("winner count must be at least 1")
	ErrInvalidDeadline      = errors.New("contest deadline must be a future time")
	ErrInvalidTransition    = errors.New("invalid contest status transition")
	ErrNotActive            = errors.New("contest is not active")
	ErrNotEnded             = errors.New("contest has not ended")
	ErrNoAnnouncement       = errors.New("contest has no announcement reference")
	ErrInvalidRequirement   = errors.New("invalid entrant requirement")
	ErrAnnouncementRejected = errors.New("announcement was rejected")
)

// AnnouncementRef locates the public announcement of a contest.
type AnnouncementRef struct {
	Channel   string `json:"channel,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	URL       string `json:"url,omitempty"`
}

// IsZero reports whether the reference points nowhere.
func (r AnnouncementRef) IsZero() bool {
	return r.MessageID == ""
}

// MentionPolicy describes whom to notify when a contest starts.
type MentionPolicy struct {
	Everyone bool     `json:"everyone,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	Users    []string `json:"users,omitempty"`
}

// RerollRecord is one independent redraw on an ended contest.
type RerollRecord struct {
	At      time.Time `json:"at"`
	Count   int       `json:"count"`
	Winners []string  `json:"winners"`
}

// Contest is a time-boxed giveaway.
type Contest struct {
	ID            string          `json:"id"`
	Status        Status          `json:"status"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	WinnerCount   int             `json:"winners"`
	Channel       string          `json:"channel,omitempty"`
	HostID        string          `json:"hostId,omitempty"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	ThumbnailURL  string          `json:"thumbnailUrl,omitempty"`
	Requirement   string          `json:"requirement,omitempty"`
	Mentions      MentionPolicy   `json:"mentions"`
	Announcement  AnnouncementRef `json:"announcement"`
	CreatedAt     time.Time       `json:"createdAt"`
	EndsAt        time.Time       `json:"endsAt"`
	EndedAt       *time.Time      `json:"endedAt,omitempty"`
	EndReason     EndReason       `json:"endReason,omitempty"`
	Winners       []string        `json:"winnerList"`
	RerollHistory []RerollRecord  `json:"rerollHistory,omitempty"`
}

// IsActive reports whether the contest still accepts entrants.
func (c *Contest) IsActive() bool {
	return c.Status == StatusActive
}

// CanTransitionTo validates contest status transition.
func (c *Contest) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusActive: {StatusEnded},
		StatusEnded:  {},
	}
	for _, s := range transitions[c.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// MarkEnded moves the contest to its terminal state.
func (c *Contest) MarkEnded(at time.Time, reason EndReason, winners []string) error {
	if !c.CanTransitionTo(StatusEnded) {
		return ErrInvalidTransition
	}
	endedAt := at.UTC()
	c.Status = StatusEnded
	c.EndedAt = &endedAt
	c.EndReason = reason
	c.Winners = copyStrings(winners)
	if c.Winners == nil {
		c.Winners = []string{}
	}
	return nil
}

// AppendReroll records a redraw without touching the original winners.
func (c *Contest) AppendReroll(at time.Time, count int, winners []string) RerollRecord {
	rec := RerollRecord{At: at.UTC(), Count: count, Winners: copyStrings(winners)}
	if rec.Winners == nil {
		rec.Winners = []string{}
	}
	c.RerollHistory = append(c.RerollHistory, rec)
	return rec
}

// Clone returns a deep copy.
func (c *Contest) Clone() *Contest {
	if c == nil {
		return nil
	}
	out := *c
	if c.EndedAt != nil {
		t := *c.EndedAt
		out.EndedAt = &t
	}
	out.Winners = copyStrings(c.Winners)
	out.Mentions.Roles = copyStrings(c.Mentions.Roles)
	out.Mentions.Users = copyStrings(c.Mentions.Users)
	if c.RerollHistory != nil {
		out.RerollHistory = make([]RerollRecord, len(c.RerollHistory))
		for i, r := range c.RerollHistory {
			r.Winners = copyStrings(r.Winners)
			out.RerollHistory[i] = r
		}
	}
	return &out
}

// copyStrings copies s, keeping nil and empty distinct.
func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}

// Normalize applies the store boundary rules: trimmed id, lowercase status
// defaulting to active, winner count of at least 1 and a creation stamp.
func Normalize(c *Contest, now time.Time) error {
	c.ID = strings.TrimSpace(c.ID)
	if c.ID == "" {
		return ErrMissingID
	}
	c.Status = Status(strings.ToLower(strings.TrimSpace(string(c.Status))))
	if c.Status == "" {
		c.Status = StatusActive
	}
	if c.WinnerCount < 1 {
		c.WinnerCount = 1
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now.UTC()
	}
	if c.Winners == nil {
		c.Winners = []string{}
	}
	return nil
}

// Entrant is a raw identity reported by the announcer.
type Entrant struct {
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
	Bot        bool           `json:"bot,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Patch holds the editable fields; nil means unchanged.
type Patch struct {
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	WinnerCount  *int    `json:"winners,omitempty"`
	ImageURL     *string `json:"imageUrl,omitempty"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty"`
	Requirement  *string `json:"requirement,omitempty"`
}

// Change is one field difference produced by Apply.
type Change struct {
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// Validate checks the patch values without applying them.
func (p Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrMissingTitle
	}
	if p.WinnerCount != nil && *p.WinnerCount < 1 {
		return ErrInvalidWinnerCount
	}
	return nil
}

// Apply writes the patch onto c and returns the fields that actually changed.
func (p Patch) Apply(c *Contest) []Change {
	var changes []Change
	setString := func(field string, dst *string, v *string) {
		if v == nil {
			return
		}
		next := strings.TrimSpace(*v)
		if next == *dst {
			return
		}
		changes = append(changes, Change{Field: field, Before: *dst, After: next})
		*dst = next
	}
	setString("title", &c.Title, p.Title)
	setString("description", &c.Description, p.Description)
	if p.WinnerCount != nil && *p.WinnerCount != c.WinnerCount {
		changes = append(changes, Change{
			Field:  "winners",
			Before: strconv.Itoa(c.WinnerCount),
			After:  strconv.Itoa(*p.WinnerCount),
		})
		c.WinnerCount = *p.WinnerCount
	}
	setString("imageUrl", &c.ImageURL, p.ImageURL)
	setString("thumbnailUrl", &c.ThumbnailURL, p.ThumbnailURL)
	setString("requirement", &c.Requirement, p.Requirement)
	return changes
}
