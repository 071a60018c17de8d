package task

import (
	"sync"
	"time"
)

// Clock is the millisecond tick counter the compositor measures time with.
// Now returns the time elapsed since the clock started.
type Clock interface {
	Now() time.Duration
}

// Millis converts a clock reading to whole milliseconds.
func Millis(c Clock) int64 {
	return c.Now().Milliseconds()
}

// SystemClock reads the monotonic wall clock.
type SystemClock struct {
	start time.Time
}

// NewSystemClock creates a clock starting at zero now.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now returns the elapsed monotonic time since the clock was created.
func (c *SystemClock) Now() time.Duration {
	return time.Since(c.start)
}

// ManualClock provides a controllable time source for testing
type ManualClock struct {
	mu  sync.RWMutex
	now time.Duration
}

// NewManualClock creates a manual clock reading zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Now returns the current simulated time
func (c *ManualClock) Now() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Set sets the current simulated time
func (c *ManualClock) Set(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = d
}

// Advance advances the simulated time by d
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}
