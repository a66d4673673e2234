package lifecycle

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_timers.go -package=mocks . Timers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/execution-hub/contest-hub/internal/application/draw"
	"github.com/execution-hub/contest-hub/internal/domain/contest"
	"github.com/execution-hub/contest-hub/internal/domain/journal"
)

// ErrIncomplete reports that the terminal state could not be persisted. The
// operation may be retried.
var ErrIncomplete = errors.New("lifecycle operation incomplete")

// Timers arms and clears per-contest deadlines.
type Timers interface {
	Schedule(c *contest.Contest)
	Cancel(id string)
	RecoverAll(contests []*contest.Contest) int
}

// CreateParams describes a new contest. EndsAt accepts RFC3339 or a
// duration relative to now such as "90m" or "2h30m".
type CreateParams struct {
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	WinnerCount  int                   `json:"winners"`
	EndsAt       string                `json:"endsAt"`
	Channel      string                `json:"channel"`
	HostID       string                `json:"hostId"`
	ImageURL     string                `json:"imageUrl"`
	ThumbnailURL string                `json:"thumbnailUrl"`
	Requirement  string                `json:"requirement"`
	Mentions     contest.MentionPolicy `json:"mentions"`
}

// Filter narrows List results.
type Filter struct {
	Status contest.Status
}

// Service drives contests through active -> ended.
type Service struct {
	store     contest.Store
	announcer contest.Announcer
	journal   journal.Journal
	timers    Timers
	selector  *draw.Selector
	ending    singleflight.Group
	locks     *keyedMutex
	now       func() time.Time
	logger    zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a lifecycle service.
func NewService(
	store contest.Store,
	announcer contest.Announcer,
	jrnl journal.Journal,
	timers Timers,
	selector *draw.Selector,
	logger zerolog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		store:     store,
		announcer: announcer,
		journal:   jrnl,
		timers:    timers,
		selector:  selector,
		locks:     newKeyedMutex(),
		now:       time.Now,
		logger:    logger.With().Str("service", "lifecycle").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseDeadline resolves an RFC3339 timestamp or a relative duration.
func ParseDeadline(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, contest.ErrInvalidDeadline
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", contest.ErrInvalidDeadline, raw)
	}
	return now.Add(d).UTC(), nil
}

// Create validates, announces, persists, journals and schedules a contest.
// Nothing is kept if any of the first three steps fail.
func (s *Service) Create(ctx context.Context, params CreateParams) (*contest.Contest, error) {
	now := s.now()
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, contest.ErrMissingTitle
	}
	if params.WinnerCount < 1 {
		return nil, contest.ErrInvalidWinnerCount
	}
	endsAt, err := ParseDeadline(params.EndsAt, now)
	if err != nil {
		return nil, err
	}
	if !endsAt.After(now) {
		return nil, contest.ErrInvalidDeadline
	}
	requirement := strings.TrimSpace(params.Requirement)
	if _, err := draw.CompileRequirement(requirement); err != nil {
		return nil, err
	}

	c := &contest.Contest{
		ID:           uuid.NewString(),
		Status:       contest.StatusActive,
		Title:        title,
		Description:  strings.TrimSpace(params.Description),
		WinnerCount:  params.WinnerCount,
		Channel:      strings.TrimSpace(params.Channel),
		HostID:       strings.TrimSpace(params.HostID),
		ImageURL:     strings.TrimSpace(params.ImageURL),
		ThumbnailURL: strings.TrimSpace(params.ThumbnailURL),
		Requirement:  requirement,
		Mentions:     params.Mentions,
		CreatedAt:    now.UTC(),
		EndsAt:       endsAt,
		Winners:      []string{},
	}

	ref, err := s.announcer.Post(ctx, RenderOpen(c, now))
	if err != nil {
		s.logger.Error().Err(err).Str("contest_id", c.ID).Msg("announcement post failed, contest not created")
		return nil, fmt.Errorf("%w: %v", contest.ErrAnnouncementRejected, err)
	}
	if ref.Channel == "" {
		ref.Channel = c.Channel
	}
	c.Announcement = ref

	stored, err := s.store.Upsert(ctx, c)
	if err != nil {
		s.logger.Error().Err(err).Str("contest_id", c.ID).Msg("persist new contest failed")
		s.discardAnnouncement(ctx, c.ID, ref)
		return nil, fmt.Errorf("persist contest: %w", err)
	}

	if err := s.journal.Append(ctx, journal.Entry{
		At:        now,
		ContestID: stored.ID,
		Kind:      journal.KindStart,
		Text:      "Contest started",
		Meta: []journal.Meta{
			{Key: "title", Value: stored.Title},
			{Key: "winners", Value: strconv.Itoa(stored.WinnerCount)},
			{Key: "ends", Value: stored.EndsAt.Format(time.RFC3339)},
		},
		Snapshot: stored,
	}); err != nil {
		s.logger.Error().Err(err).Str("contest_id", c.ID).Msg("journal start failed, rolling back")
		if _, rmErr := s.store.Remove(ctx, stored.ID); rmErr != nil {
			s.logger.Error().Err(rmErr).Str("contest_id", c.ID).Msg("rollback remove failed")
		}
		s.discardAnnouncement(ctx, c.ID, ref)
		return nil, fmt.Errorf("journal start: %w", err)
	}

	s.timers.Schedule(stored)
	s.logger.Info().
		Str("contest_id", stored.ID).
		Time("ends_at", stored.EndsAt).
		Int("winners", stored.WinnerCount).
		Msg("contest created")
	return stored, nil
}

// Edit applies a patch to an active contest. EndsAt never changes. A patch
// that changes nothing writes nothing.
func (s *Service) Edit(ctx context.Context, id string, patch contest.Patch) (*contest.Contest, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Requirement != nil {
		if _, err := draw.CompileRequirement(strings.TrimSpace(*patch.Requirement)); err != nil {
			return nil, err
		}
	}

	id = strings.TrimSpace(id)
	unlock := s.locks.Lock(id)
	defer unlock()

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsActive() {
		return nil, contest.ErrNotActive
	}

	changes := patch.Apply(c)
	if len(changes) == 0 {
		return c, nil
	}

	c.Announcement = s.refreshAnnouncement(ctx, c, RenderOpen(c, s.now()), false)

	stored, err := s.store.Upsert(ctx, c)
	if err != nil {
		s.warn(ctx, c.ID, "persist edit failed", err)
		return nil, fmt.Errorf("persist edit: %w", err)
	}
	if err := s.journal.Append(ctx, journal.Entry{
		At:        s.now(),
		ContestID: stored.ID,
		Kind:      journal.KindUpdate,
		Text:      "Contest edited",
		Changes:   changes,
	}); err != nil {
		s.logger.Warn().Err(err).Str("contest_id", stored.ID).Msg("journal update failed")
	}
	s.logger.Info().Str("contest_id", stored.ID).Int("changes", len(changes)).Msg("contest edited")
	return stored, nil
}

// End closes a contest and draws winners. Concurrent calls for the same id
// share one execution; a contest that has already ended is returned as
// stored without a new draw. The work is detached from ctx cancellation.
func (s *Service) End(ctx context.Context, id string, reason contest.EndReason) (*contest.Contest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, contest.ErrMissingID
	}
	if reason == "" {
		reason = contest.ReasonManual
	}
	detached := context.WithoutCancel(ctx)
	v, err, shared := s.ending.Do(id, func() (any, error) {
		return s.end(detached, id, reason)
	})
	if shared {
		s.logger.Debug().Str("contest_id", id).Str("reason", string(reason)).Msg("joined in-flight end")
	}
	c, _ := v.(*contest.Contest)
	return c.Clone(), err
}

// HandleDeadline is the scheduler callback.
func (s *Service) HandleDeadline(ctx context.Context, id string) {
	if _, err := s.End(ctx, id, contest.ReasonAuto); err != nil {
		s.logger.Error().Err(err).Str("contest_id", id).Msg("deadline end failed")
	}
}

func (s *Service) end(ctx context.Context, id string, reason contest.EndReason) (*contest.Contest, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	s.timers.Cancel(id)
	c, err := s.load(ctx, id)
	if err != nil {
		if !errors.Is(err, contest.ErrNotFound) {
			s.warn(ctx, id, "load before end failed", err)
		}
		return nil, err
	}
	if !c.IsActive() {
		s.logger.Debug().Str("contest_id", id).Msg("contest already ended")
		return c, nil
	}

	pending := c.Clone()
	winners := s.draw(ctx, c, c.WinnerCount)
	if err := c.MarkEnded(s.now(), reason, winners); err != nil {
		return nil, err
	}
	c.Announcement = s.refreshAnnouncement(ctx, c, RenderResult(c), true)

	stored, err := s.store.Upsert(ctx, c)
	if err != nil {
		s.warn(ctx, id, "persist ended contest failed", err)
		// still active in the store; re-arm so the deadline retries the end
		s.timers.Schedule(pending)
		return nil, fmt.Errorf("%w: persist ended contest %s: %v", ErrIncomplete, id, err)
	}

	if err := s.journal.Append(ctx, journal.Entry{
		At:        *stored.EndedAt,
		ContestID: id,
		Kind:      journal.KindEnd,
		Text:      "Contest ended",
		Meta: []journal.Meta{
			{Key: "reason", Value: string(reason)},
			{Key: "winners", Value: strconv.Itoa(len(winners)) + "/" + strconv.Itoa(stored.WinnerCount)},
		},
		Winners: stored.Winners,
	}); err != nil {
		s.logger.Warn().Err(err).Str("contest_id", id).Msg("journal end failed")
	}
	s.logger.Info().
		Str("contest_id", id).
		Str("reason", string(reason)).
		Strs("winners", stored.Winners).
		Msg("contest ended")
	return stored, nil
}

// Reroll draws again on an ended contest and records the result in its
// reroll history. count <= 0 uses the contest's winner count.
func (s *Service) Reroll(ctx context.Context, id string, count int) (contest.RerollRecord, error) {
	id = strings.TrimSpace(id)
	unlock := s.locks.Lock(id)
	defer unlock()

	c, err := s.load(ctx, id)
	if err != nil {
		return contest.RerollRecord{}, err
	}
	if c.IsActive() {
		return contest.RerollRecord{}, contest.ErrNotEnded
	}
	if c.Announcement.IsZero() {
		return contest.RerollRecord{}, contest.ErrNoAnnouncement
	}
	if count <= 0 {
		count = c.WinnerCount
	}

	winners := s.draw(ctx, c, count)
	rec := c.AppendReroll(s.now(), count, winners)
	if _, err := s.announcer.Post(ctx, RenderReroll(c, rec)); err != nil {
		s.warn(ctx, id, "reroll announcement failed", err)
	}

	if _, err := s.store.Upsert(ctx, c); err != nil {
		s.warn(ctx, id, "persist reroll failed", err)
		return contest.RerollRecord{}, fmt.Errorf("%w: persist reroll %s: %v", ErrIncomplete, id, err)
	}
	if err := s.journal.Append(ctx, journal.Entry{
		At:        rec.At,
		ContestID: id,
		Kind:      journal.KindEnd,
		Text:      "Contest rerolled",
		Meta: []journal.Meta{
			{Key: "reason", Value: string(contest.ReasonReroll)},
			{Key: "count", Value: strconv.Itoa(count)},
		},
		Winners: rec.Winners,
	}); err != nil {
		s.logger.Warn().Err(err).Str("contest_id", id).Msg("journal reroll failed")
	}
	s.logger.Info().Str("contest_id", id).Strs("winners", rec.Winners).Msg("contest rerolled")
	return rec, nil
}

// Remove deletes a contest in any status.
func (s *Service) Remove(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	unlock := s.locks.Lock(id)
	defer unlock()

	s.timers.Cancel(id)
	c, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !c.Announcement.IsZero() {
		if err := s.announcer.Delete(ctx, c.Announcement); err != nil {
			s.logger.Warn().Err(err).Str("contest_id", id).Msg("announcement delete failed")
		}
	}
	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		s.warn(ctx, id, "remove failed", err)
		return fmt.Errorf("remove contest: %w", err)
	}
	if !removed {
		return contest.ErrNotFound
	}
	if err := s.journal.Append(ctx, journal.Entry{
		At:        s.now(),
		ContestID: id,
		Kind:      journal.KindEnd,
		Text:      "Contest removed",
		Meta:      []journal.Meta{{Key: "reason", Value: string(contest.ReasonRemoved)}},
	}); err != nil {
		s.logger.Warn().Err(err).Str("contest_id", id).Msg("journal remove failed")
	}
	s.logger.Info().Str("contest_id", id).Msg("contest removed")
	return nil
}

// Get returns a contest by id, falling back to its announcement message id.
func (s *Service) Get(ctx context.Context, ref string) (*contest.Contest, error) {
	ref = strings.TrimSpace(ref)
	c, err := s.store.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c, err = s.store.FindByAnnouncement(ctx, ref)
		if err != nil {
			return nil, err
		}
	}
	if c == nil {
		return nil, contest.ErrNotFound
	}
	return c, nil
}

// List returns contests ordered by creation time.
func (s *Service) List(ctx context.Context, filter Filter) ([]*contest.Contest, error) {
	all, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*contest.Contest, 0, len(all))
	for _, c := range all {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// LogsTarget returns where the journal for a contest lives. Removed contests
// keep their journal.
func (s *Service) LogsTarget(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", contest.ErrMissingID
	}
	return s.journal.Target(id)
}

// Recover re-arms every active contest from its stored deadline. Overdue
// contests end immediately.
func (s *Service) Recover(ctx context.Context) (int, error) {
	all, err := s.store.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load contests: %w", err)
	}
	return s.timers.RecoverAll(all), nil
}

func (s *Service) load(ctx context.Context, id string) (*contest.Contest, error) {
	if id == "" {
		return nil, contest.ErrMissingID
	}
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load contest: %w", err)
	}
	if c == nil {
		return nil, contest.ErrNotFound
	}
	return c, nil
}

// draw fetches entrants and selects up to count winners. A failed fetch is
// an empty pool.
func (s *Service) draw(ctx context.Context, c *contest.Contest, count int) []string {
	var entrants []contest.Entrant
	if c.Announcement.IsZero() {
		s.warn(ctx, c.ID, "no announcement to fetch entrants from", contest.ErrNoAnnouncement)
	} else {
		var err error
		entrants, err = s.announcer.FetchEntrants(ctx, c.Announcement)
		if err != nil {
			s.warn(ctx, c.ID, "fetch entrants failed", err)
			entrants = nil
		}
	}
	winners, err := s.selector.SelectEligible(entrants, nil, count, c.Requirement)
	if err != nil {
		s.warn(ctx, c.ID, "requirement rejected, drawing without it", err)
		winners = s.selector.Select(entrants, nil, count)
	}
	return winners
}

// refreshAnnouncement edits the announcement in place. When that fails an
// open contest is deleted and reposted under a new ref, while a final result
// is posted alongside the original so its entrants stay reachable for
// rerolls. It returns the ref to store. Failures are journaled and never
// block the caller.
func (s *Service) refreshAnnouncement(ctx context.Context, c *contest.Contest, content contest.Content, final bool) contest.AnnouncementRef {
	ref := c.Announcement
	if !ref.IsZero() {
		err := s.announcer.Edit(ctx, ref, content)
		if err == nil {
			return ref
		}
		s.logger.Warn().Err(err).Str("contest_id", c.ID).Msg("announcement edit failed, reposting")
		if !final {
			if derr := s.announcer.Delete(ctx, ref); derr != nil {
				s.logger.Warn().Err(derr).Str("contest_id", c.ID).Msg("announcement delete before repost failed")
			}
		}
	}
	next, err := s.announcer.Post(ctx, content)
	if err != nil {
		s.warn(ctx, c.ID, "announcement failed", err)
		return ref
	}
	if final && !ref.IsZero() {
		return ref
	}
	if next.Channel == "" {
		next.Channel = c.Channel
	}
	return next
}

func (s *Service) discardAnnouncement(ctx context.Context, id string, ref contest.AnnouncementRef) {
	if err := s.announcer.Delete(ctx, ref); err != nil {
		s.logger.Warn().Err(err).Str("contest_id", id).Msg("rollback announcement delete failed")
	}
}

// warn logs err and leaves a warn entry in the contest journal.
func (s *Service) warn(ctx context.Context, id, text string, err error) {
	s.logger.Warn().Err(err).Str("contest_id", id).Msg(text)
	entry := journal.Entry{
		At:        s.now(),
		ContestID: id,
		Kind:      journal.KindWarn,
		Text:      text,
		Meta:      []journal.Meta{{Key: "error", Value: err.Error()}},
	}
	if jerr := s.journal.Append(ctx, entry); jerr != nil {
		s.logger.Error().Err(jerr).Str("contest_id", id).Msg("journal warn failed")
	}
}
