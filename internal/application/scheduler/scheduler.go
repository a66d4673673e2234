package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/execution-hub/contest-hub/internal/domain/contest"
)

// MaxTimerDelay is the longest single timer the scheduler arms (2^31-1 ms).
// Longer deadlines are reached by re-arming when a capped timer fires early.
const MaxTimerDelay = time.Duration(1<<31-1) * time.Millisecond

// DeadlineFunc runs the end path for a contest whose deadline elapsed.
type DeadlineFunc func(ctx context.Context, contestID string)

// Scheduler holds at most one outstanding timer per active contest.
type Scheduler struct {
	mu       sync.Mutex
	timers   map[string]*entry
	handler  DeadlineFunc
	now      func() time.Time
	maxDelay time.Duration
	stopped  bool
	running  sync.WaitGroup
	logger   zerolog.Logger
}

type entry struct {
	timer  *time.Timer
	endsAt time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the time source used to compute delays.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxDelay caps individual timers below MaxTimerDelay.
func WithMaxDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 && d < MaxTimerDelay {
			s.maxDelay = d
		}
	}
}

// New creates a scheduler. Bind must be called before timers can fire
// usefully.
func New(logger zerolog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		timers:   make(map[string]*entry),
		now:      time.Now,
		maxDelay: MaxTimerDelay,
		logger:   logger.With().Str("service", "scheduler").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bind sets the function invoked when a deadline elapses.
func (s *Scheduler) Bind(handler DeadlineFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// Delay returns how long to wait before checking endsAt again.
func (s *Scheduler) Delay(endsAt time.Time) time.Duration {
	d := endsAt.Sub(s.now())
	if d < 0 {
		return 0
	}
	if d > s.maxDelay {
		return s.maxDelay
	}
	return d
}

// Schedule arms the timer for an active contest, replacing any previous one.
func (s *Scheduler) Schedule(c *contest.Contest) {
	if c == nil || !c.IsActive() {
		return
	}
	s.arm(c.ID, c.EndsAt)
}

func (s *Scheduler) arm(id string, endsAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armLocked(id, endsAt)
}

func (s *Scheduler) armLocked(id string, endsAt time.Time) {
	if s.stopped {
		return
	}
	if prev, ok := s.timers[id]; ok {
		prev.timer.Stop()
	}
	delay := s.Delay(endsAt)
	e := &entry{endsAt: endsAt}
	e.timer = time.AfterFunc(delay, func() { s.fire(id, e) })
	s.timers[id] = e
	s.logger.Debug().Str("contest_id", id).Dur("delay", delay).Time("ends_at", endsAt).Msg("timer armed")
}

func (s *Scheduler) fire(id string, e *entry) {
	s.mu.Lock()
	if s.stopped || s.timers[id] != e {
		s.mu.Unlock()
		return
	}
	if s.now().Before(e.endsAt) {
		s.armLocked(id, e.endsAt)
		s.mu.Unlock()
		return
	}
	delete(s.timers, id)
	handler := s.handler
	s.running.Add(1)
	s.mu.Unlock()
	defer s.running.Done()

	if handler == nil {
		s.logger.Warn().Str("contest_id", id).Msg("deadline elapsed with no handler bound")
		return
	}
	s.logger.Info().Str("contest_id", id).Msg("deadline elapsed")
	handler(context.Background(), id)
}

// Cancel clears the outstanding timer for id. It is a no-op if none exists.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.timers[id]; ok {
		e.timer.Stop()
		delete(s.timers, id)
	}
}

// Pending reports whether a timer is armed for id.
func (s *Scheduler) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[id]
	return ok
}

// RecoverAll re-arms every active contest from its stored deadline. Overdue
// contests fire immediately. It returns the number of timers armed.
func (s *Scheduler) RecoverAll(contests []*contest.Contest) int {
	armed := 0
	overdue := 0
	now := s.now()
	for _, c := range contests {
		if c == nil || !c.IsActive() {
			continue
		}
		if !c.EndsAt.After(now) {
			overdue++
		}
		s.arm(c.ID, c.EndsAt)
		armed++
	}
	s.logger.Info().Int("armed", armed).Int("overdue", overdue).Msg("timers recovered")
	return armed
}

// Stop cancels all timers and waits for running handlers to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, e := range s.timers {
		e.timer.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	s.running.Wait()
}
