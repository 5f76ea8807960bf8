// Package timeout runs one cancellable countdown per pending payment.
// The scheduler never decides the outcome of a race: it only fires the
// expire transition, whose compare-and-swap on status is the final
// arbiter.
package timeout

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ExpireFunc is invoked exactly once when a countdown elapses without
// being cancelled. It must tolerate replays and lost races.
type ExpireFunc func(ctx context.Context, paymentID string)

// TickFunc receives periodic countdown updates. It is a UI nicety:
// implementations may fail or lag freely without affecting expiry.
type TickFunc func(remaining time.Duration)

var ErrAlreadyScheduled = errors.New("countdown already running for this payment")

type countdown struct {
	cancel chan struct{}
	once   sync.Once
}

// Scheduler owns the countdown goroutines, keyed by payment id.
type Scheduler struct {
	mu        sync.Mutex
	timers    map[string]*countdown
	expire    ExpireFunc
	TickEvery time.Duration
}

// NewScheduler creates a scheduler. The expire callback may be set
// later with SetExpire to break construction cycles.
func NewScheduler(expire ExpireFunc) *Scheduler {
	return &Scheduler{
		timers:    make(map[string]*countdown),
		expire:    expire,
		TickEvery: time.Second,
	}
}

// SetExpire installs the expire callback. Must be called before any
// Start when the scheduler was constructed without one.
func (s *Scheduler) SetExpire(expire ExpireFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expire = expire
}

// Start begins a countdown for the payment id. A second Start for a
// still-active id is refused; records are only ever scheduled once, at
// creation.
func (s *Scheduler) Start(id string, d time.Duration, onTick TickFunc) error {
	s.mu.Lock()
	if _, exists := s.timers[id]; exists {
		s.mu.Unlock()
		return ErrAlreadyScheduled
	}
	cd := &countdown{cancel: make(chan struct{})}
	s.timers[id] = cd
	s.mu.Unlock()

	go s.run(id, cd, d, onTick)
	return nil
}

// Cancel stops the countdown for the payment id. Cancelling an unknown
// or already-finished id is a no-op.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	cd, ok := s.timers[id]
	if ok {
		delete(s.timers, id)
	}
	s.mu.Unlock()

	if ok {
		cd.once.Do(func() { close(cd.cancel) })
	}
}

// Active returns the number of running countdowns.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Scheduler) run(id string, cd *countdown, d time.Duration, onTick TickFunc) {
	deadline := time.Now().Add(d)
	timer := time.NewTimer(d)
	defer timer.Stop()

	var tick <-chan time.Time
	if onTick != nil {
		ticker := time.NewTicker(s.TickEvery)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-cd.cancel:
			return
		case <-tick:
			// Only elapsed time governs expiry, never tick success.
			onTick(time.Until(deadline))
		case <-timer.C:
			s.mu.Lock()
			delete(s.timers, id)
			expire := s.expire
			s.mu.Unlock()
			if expire != nil {
				expire(context.Background(), id)
			}
			return
		}
	}
}
