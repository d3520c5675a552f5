package core

import (
	"sync"
	"time"
)

// MinTimeBetweenUpdates is the minimum interval between two ecobee API fetches
const MinTimeBetweenUpdates = 180 * time.Second

// Throttle gates an operation to run at most once per Interval.
// A call is rejected while another is in flight or before Interval has
// elapsed since the last call started, whatever that call's outcome.
type Throttle struct {
	Interval time.Duration

	mu       sync.Mutex
	lastCall time.Time
	running  bool
	now      func() time.Time
}

// NewThrottle creates a throttle with the given interval
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{
		Interval: interval,
		now:      time.Now,
	}
}

// TryAcquire reports whether the caller may run the operation now.
// Every successful TryAcquire must be followed by Release.
func (t *Throttle) TryAcquire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return false
	}
	if !t.lastCall.IsZero() && t.now().Sub(t.lastCall) < t.Interval {
		return false
	}

	t.running = true
	t.lastCall = t.now()
	return true
}

// Release ends a call started with TryAcquire
func (t *Throttle) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
}

// LastCall returns when the last admitted call started, or the zero time
func (t *Throttle) LastCall() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastCall
}

// Reset forgets the last call so the next call runs immediately
func (t *Throttle) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastCall = time.Time{}
}
