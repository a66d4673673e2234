//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execution-hub/contest-hub/internal/domain/contest"
)

func newRepository(t *testing.T) *ContestRepository {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, RunMigrations(ctx, pool, Migrations()))
	return NewContestRepository(pool, zerolog.Nop())
}

func TestContestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	id := uuid.NewString()
	t.Cleanup(func() { _, _ = repo.Remove(context.Background(), id) })

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	in := &contest.Contest{
		ID:          id,
		Status:      contest.StatusActive,
		Title:       "Keyboard",
		WinnerCount: 2,
		Mentions:    contest.MentionPolicy{Roles: []string{"fans"}},
		Announcement: contest.AnnouncementRef{
			Channel:   "general",
			MessageID: "msg-" + id,
		},
		CreatedAt: created,
		EndsAt:    created.Add(time.Hour),
	}
	out, err := repo.Upsert(ctx, in)
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	if diff := cmp.Diff(out, got); diff != "" {
		t.Fatalf("stored contest mismatch (-upsert +get):\n%s", diff)
	}

	byMessage, err := repo.FindByAnnouncement(ctx, "msg-"+id)
	require.NoError(t, err)
	require.NotNil(t, byMessage)
	assert.Equal(t, id, byMessage.ID)

	require.NoError(t, out.MarkEnded(created.Add(2*time.Hour), contest.ReasonAuto, []string{"A"}))
	out.AppendReroll(created.Add(3*time.Hour), 1, []string{"B"})
	_, err = repo.Upsert(ctx, out)
	require.NoError(t, err)

	got, err = repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, contest.StatusEnded, got.Status)
	assert.Equal(t, []string{"A"}, got.Winners)
	require.Len(t, got.RerollHistory, 1)
	assert.Equal(t, created, got.CreatedAt)

	removed, err := repo.Remove(ctx, id)
	require.NoError(t, err)
	assert.True(t, removed)

	missing, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
