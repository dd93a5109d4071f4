package session

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Ticker delivers the training clock's one-second ticks. Start returns the
// tick channel; Stop closes it. A Ticker may be started again after Stop.
type Ticker interface {
	Start() <-chan time.Time
	Stop()
}

// CronTicker is a Ticker backed by a gocron scheduler with a single job.
type CronTicker struct {
	interval time.Duration

	mu     sync.Mutex
	sched  *gocron.Scheduler
	ch     chan time.Time
	closed bool
}

// NewCronTicker creates a ticker firing every interval.
func NewCronTicker(interval time.Duration) *CronTicker {
	if interval <= 0 {
		interval = time.Second
	}
	return &CronTicker{interval: interval}
}

// Start schedules the tick job. Calling Start on a running ticker returns
// the existing channel.
func (t *CronTicker) Start() <-chan time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sched != nil {
		return t.ch
	}

	ch := make(chan time.Time, 1)
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if _, err := s.Every(t.interval).WaitForSchedule().Do(t.fire, ch); err != nil {
		// Every/Do only fail on invalid intervals, which NewCronTicker rules out.
		close(ch)
		return ch
	}

	t.sched = s
	t.ch = ch
	t.closed = false
	s.StartAsync()
	return ch
}

// fire delivers one tick without blocking. A slow reader drops ticks; the
// clock is recomputed from wall time on each tick anyway.
func (t *CronTicker) fire(ch chan time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || ch != t.ch {
		return
	}
	select {
	case ch <- time.Now():
	default:
	}
}

// Stop halts the scheduler and closes the tick channel. Idempotent.
func (t *CronTicker) Stop() {
	t.mu.Lock()
	s := t.sched
	if s == nil {
		t.mu.Unlock()
		return
	}
	t.sched = nil
	t.closed = true
	close(t.ch)
	t.mu.Unlock()

	// Stop waits for a running fire, which needs t.mu.
	s.Stop()
}

// Running reports whether the ticker is started.
func (t *CronTicker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sched != nil
}
