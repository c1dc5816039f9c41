package engine

import (
	"sync"
	"time"
)

// TimerState is a snapshot of the rest timer for progress display.
type TimerState struct {
	Remaining int  `json:"remainingSeconds"`
	Total     int  `json:"totalSeconds"`
	Active    bool `json:"active"`
}

// RestTimer is the single system-wide countdown between sets. Starting a new
// countdown replaces a running one outright; there is no queue. Exactly one
// ticking goroutine exists while the timer is active.
type RestTimer struct {
	mu        sync.Mutex
	remaining int
	total     int
	stop      chan struct{}

	// tick is the countdown cadence, overridable in tests.
	tick time.Duration
}

// NewRestTimer returns an idle timer.
func NewRestTimer() *RestTimer {
	return &RestTimer{tick: time.Second}
}

// Start begins a countdown of the given duration, replacing any running one.
// Non-positive durations are ignored.
func (t *RestTimer) Start(d time.Duration) {
	secs := int(d / time.Second)
	if secs <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()

	t.remaining = secs
	t.total = secs
	t.stop = make(chan struct{})
	go t.run(t.stop)
}

func (t *RestTimer) run(stop chan struct{}) {
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.stop != stop {
				// Replaced while we were waiting on the tick.
				t.mu.Unlock()
				return
			}
			t.remaining--
			if t.remaining <= 0 {
				t.stopLocked()
				t.mu.Unlock()
				return
			}
			t.mu.Unlock()
		}
	}
}

// Extend adds seconds to both the remaining and total time of a running
// countdown. No effect while idle.
func (t *RestTimer) Extend(seconds int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop == nil || seconds <= 0 {
		return
	}
	t.remaining += seconds
	t.total += seconds
}

// Stop transitions to idle immediately, regardless of remaining time.
func (t *RestTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *RestTimer) stopLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.remaining = 0
	t.total = 0
}

// State returns the current snapshot.
func (t *RestTimer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TimerState{
		Remaining: t.remaining,
		Total:     t.total,
		Active:    t.stop != nil,
	}
}
