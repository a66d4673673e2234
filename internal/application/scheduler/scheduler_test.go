package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execution-hub/contest-hub/internal/domain/contest"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	calls atomic.Int32
	fired chan string
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan string, 16)}
}

func (r *recorder) handle(_ context.Context, id string) {
	r.calls.Add(1)
	r.fired <- id
}

func (r *recorder) wait(t *testing.T, timeout time.Duration) string {
	t.Helper()
	select {
	case id := <-r.fired:
		return id
	case <-time.After(timeout):
		t.Fatal("timed out waiting for deadline handler")
		return ""
	}
}

func active(id string, endsAt time.Time) *contest.Contest {
	return &contest.Contest{ID: id, Status: contest.StatusActive, WinnerCount: 1, EndsAt: endsAt}
}

func TestDelayClamp(t *testing.T) {
	clock := newFakeClock()
	s := New(zerolog.Nop(), WithClock(clock.Now))

	assert.Equal(t, time.Duration(0), s.Delay(clock.Now().Add(-time.Hour)))
	assert.Equal(t, 90*time.Minute, s.Delay(clock.Now().Add(90*time.Minute)))
	assert.Equal(t, MaxTimerDelay, s.Delay(clock.Now().Add(40*24*time.Hour)))
}

func TestRecoverAllFiresOverdueImmediately(t *testing.T) {
	clock := newFakeClock()
	rec := newRecorder()
	s := New(zerolog.Nop(), WithClock(clock.Now))
	s.Bind(rec.handle)
	defer s.Stop()

	armed := s.RecoverAll([]*contest.Contest{
		active("overdue", clock.Now().Add(-10*time.Minute)),
		active("later", clock.Now().Add(time.Hour)),
		{ID: "done", Status: contest.StatusEnded, EndsAt: clock.Now().Add(-time.Hour)},
	})

	assert.Equal(t, 2, armed)
	assert.Equal(t, "overdue", rec.wait(t, time.Second))
	assert.True(t, s.Pending("later"))
	assert.False(t, s.Pending("done"))
	assert.False(t, s.Pending("overdue"))
}

func TestCappedTimerRearmsUntilDeadline(t *testing.T) {
	clock := newFakeClock()
	rec := newRecorder()
	s := New(zerolog.Nop(), WithClock(clock.Now), WithMaxDelay(10*time.Millisecond))
	s.Bind(rec.handle)
	defer s.Stop()

	s.Schedule(active("c1", clock.Now().Add(90*time.Minute)))

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), rec.calls.Load(), "ended before its deadline")
	assert.True(t, s.Pending("c1"))

	clock.Advance(90 * time.Minute)
	assert.Equal(t, "c1", rec.wait(t, time.Second))
	assert.False(t, s.Pending("c1"))
	assert.Equal(t, int32(1), rec.calls.Load())
}

func TestCancelPreventsFiring(t *testing.T) {
	clock := newFakeClock()
	rec := newRecorder()
	s := New(zerolog.Nop(), WithClock(clock.Now), WithMaxDelay(5*time.Millisecond))
	s.Bind(rec.handle)
	defer s.Stop()

	s.Schedule(active("c1", clock.Now().Add(time.Minute)))
	s.Cancel("c1")
	s.Cancel("c1")
	clock.Advance(time.Hour)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), rec.calls.Load())
	assert.False(t, s.Pending("c1"))
}

func TestScheduleReplacesPreviousTimer(t *testing.T) {
	clock := newFakeClock()
	rec := newRecorder()
	s := New(zerolog.Nop(), WithClock(clock.Now))
	s.Bind(rec.handle)
	defer s.Stop()

	s.Schedule(active("c1", clock.Now().Add(30*time.Millisecond)))
	s.Schedule(active("c1", clock.Now().Add(-time.Second)))

	require.Equal(t, "c1", rec.wait(t, time.Second))
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), rec.calls.Load())
}

func TestScheduleIgnoresEndedContest(t *testing.T) {
	s := New(zerolog.Nop())
	defer s.Stop()
	s.Schedule(&contest.Contest{ID: "c1", Status: contest.StatusEnded, EndsAt: time.Now()})
	s.Schedule(nil)
	assert.False(t, s.Pending("c1"))
}

func TestStopDisarmsEverything(t *testing.T) {
	clock := newFakeClock()
	rec := newRecorder()
	s := New(zerolog.Nop(), WithClock(clock.Now), WithMaxDelay(5*time.Millisecond))
	s.Bind(rec.handle)

	s.Schedule(active("c1", clock.Now().Add(time.Minute)))
	s.Stop()
	clock.Advance(time.Hour)
	s.Schedule(active("c2", clock.Now().Add(-time.Minute)))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), rec.calls.Load())
	assert.False(t, s.Pending("c1"))
	assert.False(t, s.Pending("c2"))
}
