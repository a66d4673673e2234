package journal

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_journal.go -package=mocks . Journal

import (
	"context"
	"errors"
	"time"

	"github.com/execution-hub/contest-hub/internal/domain/contest"
)

// Kind classifies a journal entry.
type Kind string

const (
	KindStart  Kind = "start"
	KindUpdate Kind = "update"
	KindEnd    Kind = "end"
	KindWarn   Kind = "warn"
)

var ErrUnknownKind = errors.New("unknown journal entry kind")

// Meta is one ordered key/value pair in an entry payload.
type Meta struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Entry is a single lifecycle event. Entries are appended, never rewritten.
type Entry struct {
	At        time.Time        `json:"at"`
	ContestID string           `json:"contestId"`
	Kind      Kind             `json:"kind"`
	Text      string           `json:"text,omitempty"`
	Meta      []Meta           `json:"meta,omitempty"`
	Changes   []contest.Change `json:"changes,omitempty"`
	Winners   []string         `json:"winners,omitempty"`
	Snapshot  *contest.Contest `json:"snapshot,omitempty"`
}

// Valid reports whether the entry kind is known.
func (k Kind) Valid() bool {
	switch k {
	case KindStart, KindUpdate, KindEnd, KindWarn:
		return true
	}
	return false
}

// Journal is the append-only audit trail of contest lifecycle events. It is
// never read back to rebuild state.
type Journal interface {
	Append(ctx context.Context, entry Entry) error
	// Target returns where entries for the contest are written.
	Target(contestID string) (string, error)
}
