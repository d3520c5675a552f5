package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestThrottle(interval time.Duration) (*Throttle, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
	throttle := NewThrottle(interval)
	throttle.now = clock.Now
	return throttle, clock
}

func TestThrottle_FirstCallAllowed(t *testing.T) {
	throttle, _ := newTestThrottle(time.Minute)

	assert.True(t, throttle.LastCall().IsZero())
	assert.True(t, throttle.TryAcquire())
}

func TestThrottle_WithinInterval(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		allowed bool
	}{
		{name: "immediately", elapsed: 0, allowed: false},
		{name: "just before interval", elapsed: 179 * time.Second, allowed: false},
		{name: "at interval", elapsed: 180 * time.Second, allowed: true},
		{name: "after interval", elapsed: 10 * time.Minute, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			throttle, clock := newTestThrottle(MinTimeBetweenUpdates)

			assert.True(t, throttle.TryAcquire())
			throttle.Release()

			clock.Advance(tt.elapsed)
			assert.Equal(t, tt.allowed, throttle.TryAcquire())
		})
	}
}

func TestThrottle_RejectsWhileRunning(t *testing.T) {
	throttle, clock := newTestThrottle(time.Minute)

	assert.True(t, throttle.TryAcquire())
	clock.Advance(time.Hour)
	assert.False(t, throttle.TryAcquire(), "overlapping call should be rejected")

	throttle.Release()
	clock.Advance(time.Hour)
	assert.True(t, throttle.TryAcquire())
}

func TestThrottle_EveryCallCounts(t *testing.T) {
	throttle, clock := newTestThrottle(time.Minute)
	start := clock.Now()

	assert.True(t, throttle.TryAcquire())
	assert.Equal(t, start, throttle.LastCall(), "call time is recorded when the call is admitted")

	clock.Advance(30 * time.Second)
	throttle.Release()
	assert.Equal(t, start, throttle.LastCall())
	assert.False(t, throttle.TryAcquire())

	clock.Advance(30 * time.Second)
	assert.True(t, throttle.TryAcquire())
}

func TestThrottle_Reset(t *testing.T) {
	throttle, _ := newTestThrottle(time.Minute)

	assert.True(t, throttle.TryAcquire())
	throttle.Release()
	assert.False(t, throttle.TryAcquire())

	throttle.Reset()
	assert.True(t, throttle.TryAcquire())
}
