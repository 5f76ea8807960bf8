package timeout

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expireRecorder struct {
	mu    sync.Mutex
	calls map[string]int
	fired chan string
}

func newExpireRecorder() *expireRecorder {
	return &expireRecorder{
		calls: make(map[string]int),
		fired: make(chan string, 128),
	}
}

func (r *expireRecorder) expire(_ context.Context, id string) {
	r.mu.Lock()
	r.calls[id]++
	r.mu.Unlock()
	r.fired <- id
}

func (r *expireRecorder) count(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[id]
}

func waitFor(t *testing.T, ch chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatal("countdown never expired")
	}
}

func TestSchedulerExpires(t *testing.T) {
	rec := newExpireRecorder()
	s := NewScheduler(rec.expire)

	require.NoError(t, s.Start("p1", 20*time.Millisecond, nil))
	assert.Equal(t, 1, s.Active())

	waitFor(t, rec.fired, "p1")
	assert.Equal(t, 1, rec.count("p1"))
	assert.Equal(t, 0, s.Active())
}

func TestSchedulerCancel(t *testing.T) {
	rec := newExpireRecorder()
	s := NewScheduler(rec.expire)

	require.NoError(t, s.Start("p1", 50*time.Millisecond, nil))
	s.Cancel("p1")
	assert.Equal(t, 0, s.Active())

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 0, rec.count("p1"))

	// Cancelling again, or cancelling an id that never ran, is a no-op.
	s.Cancel("p1")
	s.Cancel("never-started")
}

func TestSchedulerRefusesDoubleStart(t *testing.T) {
	rec := newExpireRecorder()
	s := NewScheduler(rec.expire)

	require.NoError(t, s.Start("p1", time.Minute, nil))
	assert.ErrorIs(t, s.Start("p1", time.Minute, nil), ErrAlreadyScheduled)

	s.Cancel("p1")
	// Once the previous countdown is gone the id can be scheduled again.
	require.NoError(t, s.Start("p1", time.Minute, nil))
	s.Cancel("p1")
}

func TestSchedulerTicks(t *testing.T) {
	rec := newExpireRecorder()
	s := NewScheduler(rec.expire)
	s.TickEvery = 10 * time.Millisecond

	var ticks int64
	var lastRemaining int64
	require.NoError(t, s.Start("p1", 100*time.Millisecond, func(remaining time.Duration) {
		atomic.AddInt64(&ticks, 1)
		atomic.StoreInt64(&lastRemaining, int64(remaining))
	}))

	waitFor(t, rec.fired, "p1")
	assert.GreaterOrEqual(t, atomic.LoadInt64(&ticks), int64(3))
	assert.Less(t, atomic.LoadInt64(&lastRemaining), int64(100*time.Millisecond))
}

func TestSchedulerSetExpireLate(t *testing.T) {
	rec := newExpireRecorder()
	s := NewScheduler(nil)
	s.SetExpire(rec.expire)

	require.NoError(t, s.Start("p1", 20*time.Millisecond, nil))
	waitFor(t, rec.fired, "p1")
}

func TestSchedulerCancelExpireRace(t *testing.T) {
	// Fire Cancel right around the deadline many times over; whatever
	// happens, expire must run at most once per id.
	rec := newExpireRecorder()
	s := NewScheduler(rec.expire)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		id := "race-" + string(rune('a'+i%26)) + string(rune('a'+i/26))
		require.NoError(t, s.Start(id, 10*time.Millisecond, nil))
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			time.Sleep(10 * time.Millisecond)
			s.Cancel(id)
		}(id)
	}
	wg.Wait()
	time.Sleep(50 * time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	for id, n := range rec.calls {
		assert.LessOrEqual(t, n, 1, "countdown %s expired more than once", id)
	}
}
