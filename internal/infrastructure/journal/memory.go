package journal

import (
	"context"
	"fmt"
	"sync"
	"time"

	domainJournal "github.com/execution-hub/contest-hub/internal/domain/journal"
)

// Memory keeps entries in process. Used by tests and JOURNAL_DRIVER=memory.
type Memory struct {
	mu      sync.Mutex
	entries []domainJournal.Entry
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(ctx context.Context, entry domainJournal.Entry) error {
	if !entry.Kind.Valid() {
		return fmt.Errorf("%w: %q", domainJournal.ErrUnknownKind, entry.Kind)
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *Memory) Target(contestID string) (string, error) {
	return "memory://" + SanitizeID(contestID), nil
}

// Entries returns the entries recorded for contestID, in append order.
func (m *Memory) Entries(contestID string) []domainJournal.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domainJournal.Entry
	for _, e := range m.entries {
		if e.ContestID == contestID {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many entries of kind exist for contestID.
func (m *Memory) Count(contestID string, kind domainJournal.Kind) int {
	n := 0
	for _, e := range m.Entries(contestID) {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
