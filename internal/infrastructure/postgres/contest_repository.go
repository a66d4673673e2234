package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/execution-hub/contest-hub/internal/domain/contest"
)

const contestColumns = `contest_id, status, title, description, winner_count, channel, host_id,
	image_url, thumbnail_url, requirement, mentions, announcement, created_at, ends_at,
	ended_at, end_reason, winners, reroll_history`

// ContestRepository implements contest.Store.
type ContestRepository struct {
	pool   *pgxpool.Pool
	now    func() time.Time
	logger zerolog.Logger
}

func NewContestRepository(pool *pgxpool.Pool, logger zerolog.Logger) *ContestRepository {
	return &ContestRepository{
		pool:   pool,
		now:    time.Now,
		logger: logger.With().Str("service", "postgres").Logger(),
	}
}

func (r *ContestRepository) LoadAll(ctx context.Context) ([]*contest.Contest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+contestColumns+`
		FROM contests
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*contest.Contest, 0)
	for rows.Next() {
		c, err := scanContest(rows)
		if err != nil {
			r.logger.Warn().Err(err).Msg("skipping unreadable contest row")
			continue
		}
		if c == nil || contest.Normalize(c, r.now()) != nil {
			continue
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ContestRepository) Get(ctx context.Context, id string) (*contest.Contest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+contestColumns+`
		FROM contests
		WHERE contest_id=$1
	`, id)
	return r.normalized(scanContest(row))
}

func (r *ContestRepository) FindByAnnouncement(ctx context.Context, messageID string) (*contest.Contest, error) {
	messageID = strings.TrimSpace(messageID)
	if messageID == "" {
		return nil, nil
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+contestColumns+`
		FROM contests
		WHERE message_id=$1
		ORDER BY created_at DESC
		LIMIT 1
	`, messageID)
	return r.normalized(scanContest(row))
}

// Upsert writes the contest in a single statement.
func (r *ContestRepository) Upsert(ctx context.Context, c *contest.Contest) (*contest.Contest, error) {
	if c == nil {
		return nil, contest.ErrMissingID
	}
	item := c.Clone()
	if err := contest.Normalize(item, r.now()); err != nil {
		return nil, err
	}
	mentions, err := json.Marshal(item.Mentions)
	if err != nil {
		return nil, fmt.Errorf("encode mentions: %w", err)
	}
	announcement, err := json.Marshal(item.Announcement)
	if err != nil {
		return nil, fmt.Errorf("encode announcement: %w", err)
	}
	winners, err := json.Marshal(item.Winners)
	if err != nil {
		return nil, fmt.Errorf("encode winners: %w", err)
	}
	history := item.RerollHistory
	if history == nil {
		history = []contest.RerollRecord{}
	}
	rerolls, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("encode reroll history: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO contests
		(contest_id, status, title, description, winner_count, channel, host_id, image_url, thumbnail_url,
		 requirement, mentions, announcement, message_id, created_at, ends_at, ended_at, end_reason, winners, reroll_history)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (contest_id) DO UPDATE SET
			status=EXCLUDED.status,
			title=EXCLUDED.title,
			description=EXCLUDED.description,
			winner_count=EXCLUDED.winner_count,
			channel=EXCLUDED.channel,
			host_id=EXCLUDED.host_id,
			image_url=EXCLUDED.image_url,
			thumbnail_url=EXCLUDED.thumbnail_url,
			requirement=EXCLUDED.requirement,
			mentions=EXCLUDED.mentions,
			announcement=EXCLUDED.announcement,
			message_id=EXCLUDED.message_id,
			ends_at=EXCLUDED.ends_at,
			ended_at=EXCLUDED.ended_at,
			end_reason=EXCLUDED.end_reason,
			winners=EXCLUDED.winners,
			reroll_history=EXCLUDED.reroll_history
	`, item.ID, item.Status, item.Title, item.Description, item.WinnerCount, item.Channel, item.HostID,
		item.ImageURL, item.ThumbnailURL, item.Requirement, json.RawMessage(mentions), json.RawMessage(announcement),
		item.Announcement.MessageID, item.CreatedAt, item.EndsAt, item.EndedAt, item.EndReason,
		json.RawMessage(winners), json.RawMessage(rerolls))
	if err != nil {
		return nil, err
	}
	return item.Clone(), nil
}

func (r *ContestRepository) Remove(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, nil
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM contests WHERE contest_id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ContestRepository) normalized(c *contest.Contest, err error) (*contest.Contest, error) {
	if err != nil || c == nil {
		return nil, err
	}
	if err := contest.Normalize(c, r.now()); err != nil {
		return nil, nil
	}
	return c, nil
}

func scanContest(row pgx.Row) (*contest.Contest, error) {
	var c contest.Contest
	var mentions, announcement, winners, rerolls json.RawMessage
	if err := row.Scan(&c.ID, &c.Status, &c.Title, &c.Description, &c.WinnerCount, &c.Channel, &c.HostID,
		&c.ImageURL, &c.ThumbnailURL, &c.Requirement, &mentions, &announcement, &c.CreatedAt, &c.EndsAt,
		&c.EndedAt, &c.EndReason, &winners, &rerolls); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(mentions) > 0 {
		if err := json.Unmarshal(mentions, &c.Mentions); err != nil {
			return nil, fmt.Errorf("decode mentions: %w", err)
		}
	}
	if len(announcement) > 0 {
		if err := json.Unmarshal(announcement, &c.Announcement); err != nil {
			return nil, fmt.Errorf("decode announcement: %w", err)
		}
	}
	if len(winners) > 0 {
		if err := json.Unmarshal(winners, &c.Winners); err != nil {
			return nil, fmt.Errorf("decode winners: %w", err)
		}
	}
	if len(rerolls) > 0 {
		if err := json.Unmarshal(rerolls, &c.RerollHistory); err != nil {
			return nil, fmt.Errorf("decode reroll history: %w", err)
		}
		if len(c.RerollHistory) == 0 {
			c.RerollHistory = nil
		}
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.EndsAt = c.EndsAt.UTC()
	if c.EndedAt != nil {
		t := c.EndedAt.UTC()
		c.EndedAt = &t
	}
	return &c, nil
}
