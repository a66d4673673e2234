//go:build integration

package announcer

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execution-hub/contest-hub/internal/domain/contest"
)

func TestRedisBook(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	book, err := NewRedisBook(ctx, RedisConfig{Addr: addr, Prefix: "contest-hub-test:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = book.Close() })

	msg := uuid.NewString()
	t.Cleanup(func() { _ = book.Clear(context.Background(), msg) })

	require.NoError(t, book.Add(ctx, msg, contest.Entrant{ID: "A", Name: "Alice"}))
	require.NoError(t, book.Add(ctx, msg, contest.Entrant{ID: "B", Attributes: map[string]any{"level": 3.0}}))

	got, err := book.List(ctx, msg)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alice", got[0].Name)
	assert.Equal(t, 3.0, got[1].Attributes["level"])

	require.NoError(t, book.Clear(ctx, msg))
	got, err = book.List(ctx, msg)
	require.NoError(t, err)
	assert.Empty(t, got)
}
