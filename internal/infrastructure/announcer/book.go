package announcer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/execution-hub/contest-hub/internal/domain/contest"
)

// EntrantBook records who entered through an announcement. Lists keep raw
// registrations, duplicates included.
type EntrantBook interface {
	Add(ctx context.Context, messageID string, e contest.Entrant) error
	List(ctx context.Context, messageID string) ([]contest.Entrant, error)
	Clear(ctx context.Context, messageID string) error
}

// MemoryBook is an in-process EntrantBook.
type MemoryBook struct {
	mu      sync.Mutex
	entries map[string][]contest.Entrant
}

func NewMemoryBook() *MemoryBook {
	return &MemoryBook{entries: make(map[string][]contest.Entrant)}
}

func (b *MemoryBook) Add(ctx context.Context, messageID string, e contest.Entrant) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[messageID] = append(b.entries[messageID], e)
	return nil
}

func (b *MemoryBook) List(ctx context.Context, messageID string) ([]contest.Entrant, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]contest.Entrant(nil), b.entries[messageID]...), nil
}

func (b *MemoryBook) Clear(ctx context.Context, messageID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, messageID)
	return nil
}

const defaultKeyPrefix = "contest-hub:entrants:"

// RedisBook keeps one Redis list per announcement so registrations survive
// restarts.
type RedisBook struct {
	client redis.UniversalClient
	prefix string
}

// RedisConfig configures NewRedisBook.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}

// NewRedisBook connects to Redis and verifies the server answers.
func NewRedisBook(ctx context.Context, cfg RedisConfig) (*RedisBook, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:       addr,
		Username:   strings.TrimSpace(cfg.Username),
		Password:   cfg.Password,
		DB:         cfg.DB,
		MaxRetries: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisBookFromClient(client, cfg.Prefix), nil
}

// NewRedisBookFromClient wraps an existing client.
func NewRedisBookFromClient(client redis.UniversalClient, prefix string) *RedisBook {
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisBook{client: client, prefix: prefix}
}

func (b *RedisBook) key(messageID string) string {
	return b.prefix + messageID
}

func (b *RedisBook) Add(ctx context.Context, messageID string, e contest.Entrant) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entrant: %w", err)
	}
	return b.client.RPush(ctx, b.key(messageID), payload).Err()
}

func (b *RedisBook) List(ctx context.Context, messageID string) ([]contest.Entrant, error) {
	raw, err := b.client.LRange(ctx, b.key(messageID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]contest.Entrant, 0, len(raw))
	for _, item := range raw {
		var e contest.Entrant
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (b *RedisBook) Clear(ctx context.Context, messageID string) error {
	return b.client.Del(ctx, b.key(messageID)).Err()
}

// Close releases the Redis connection pool.
func (b *RedisBook) Close() error {
	return b.client.Close()
}
