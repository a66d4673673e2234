package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/atomic"
	"github.com/rs/zerolog"

	"github.com/execution-hub/contest-hub/internal/domain/contest"
)

const (
	// FileName is the store document inside the data directory.
	FileName = "store.json"
	dirPerms = 0o755
)

// document is the on-disk layout.
type document struct {
	Items []*contest.Contest `json:"items"`
}

// Store implements contest.Store over a single JSON document that is
// replaced atomically on every write.
type Store struct {
	mu     sync.Mutex
	path   string
	now    func() time.Time
	logger zerolog.Logger
}

// New creates a store rooted at dir/store.json.
func New(dir string, logger zerolog.Logger) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("filestore: data dir is required")
	}
	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return nil, fmt.Errorf("filestore: create data dir: %w", err)
	}
	return &Store{
		path:   filepath.Join(dir, FileName),
		now:    time.Now,
		logger: logger.With().Str("service", "filestore").Logger(),
	}, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) LoadAll(ctx context.Context) ([]*contest.Contest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}

func (s *Store) Get(ctx context.Context, id string) (*contest.Contest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.load() {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (s *Store) FindByAnnouncement(ctx context.Context, messageID string) (*contest.Contest, error) {
	messageID = strings.TrimSpace(messageID)
	if messageID == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.load() {
		if c.Announcement.MessageID == messageID {
			return c, nil
		}
	}
	return nil, nil
}

func (s *Store) Upsert(ctx context.Context, c *contest.Contest) (*contest.Contest, error) {
	if c == nil {
		return nil, contest.ErrMissingID
	}
	item := c.Clone()
	if err := contest.Normalize(item, s.now()); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.load()
	replaced := false
	for i, existing := range items {
		if existing.ID == item.ID {
			items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, item)
	}
	if err := s.save(items); err != nil {
		return nil, err
	}
	return item.Clone(), nil
}

func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.load()
	kept := items[:0]
	for _, c := range items {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(items) {
		return false, nil
	}
	if err := s.save(kept); err != nil {
		return false, err
	}
	return true, nil
}

// load reads the document. Missing, unreadable or malformed state yields an
// empty collection. Entries are normalized and duplicates collapse with the
// last occurrence winning.
func (s *Store) load() []*contest.Contest {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("store unreadable, treating as empty")
		}
		return []*contest.Contest{}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []*contest.Contest{}
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("store malformed, treating as empty")
		return []*contest.Contest{}
	}

	now := s.now()
	index := make(map[string]int, len(doc.Items))
	items := make([]*contest.Contest, 0, len(doc.Items))
	for _, c := range doc.Items {
		if c == nil {
			continue
		}
		if err := contest.Normalize(c, now); err != nil {
			continue
		}
		if i, ok := index[c.ID]; ok {
			items[i] = c
			continue
		}
		index[c.ID] = len(items)
		items = append(items, c)
	}
	return items
}

func (s *Store) save(items []*contest.Contest) error {
	if items == nil {
		items = []*contest.Contest{}
	}
	data, err := json.MarshalIndent(document{Items: items}, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: encode: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("filestore: write %s: %w", s.path, err)
	}
	return nil
}
