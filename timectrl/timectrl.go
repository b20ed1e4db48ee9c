package timectrl

import (
	"context"
	"sync"
	"time"
)

// Clock is the time source for wave computation. Components depend on this
// abstraction rather than the wall clock so wave timing can be driven in
// simulation without waiting in real time.
type Clock interface {
	// Now returns the current time on this clock.
	Now() time.Time
	// Delay blocks for d of clock time, returning early with the context
	// error if ctx is cancelled. On a scaled clock d elapses faster than
	// wall time by the configured multiplier.
	Delay(ctx context.Context, d time.Duration) error
}

// Config controls clock behaviour. Production code always uses a
// SpeedMultiplier of 1; larger values are a demo/test facility and are
// fixed for the lifetime of the clock.
type Config struct {
	SpeedMultiplier float64
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// Delay sleeps for d or until ctx is cancelled.
func (SystemClock) Delay(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

// SimClock maps wall time onto an accelerated simulation timeline: clock
// time advances SpeedMultiplier times faster than wall time from the given
// start instant.
type SimClock struct {
	start      time.Time
	realStart  time.Time
	multiplier float64
}

// NewSimClock constructs a scaled clock starting at start. A multiplier of
// zero or below is clamped to 1 rather than rejected, so a misconfigured
// demo degrades to real time instead of freezing.
func NewSimClock(start time.Time, cfg Config) *SimClock {
	m := cfg.SpeedMultiplier
	if m <= 0 {
		m = 1
	}
	return &SimClock{
		start:      start,
		realStart:  time.Now(),
		multiplier: m,
	}
}

// Now returns the scaled simulation time.
func (c *SimClock) Now() time.Time {
	elapsed := time.Since(c.realStart)
	return c.start.Add(time.Duration(float64(elapsed) * c.multiplier))
}

// Delay blocks until d of simulation time has elapsed, i.e. d divided by
// the multiplier of wall time.
func (c *SimClock) Delay(ctx context.Context, d time.Duration) error {
	real := time.Duration(float64(d) / c.multiplier)
	return sleep(ctx, real)
}

// ManualClock is a test clock advanced explicitly. Delay advances the
// clock by the requested duration and returns immediately, which keeps
// observation-loop tests deterministic.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock constructs a manual clock set to start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the manually set time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// SetTime moves the clock to the given instant.
func (c *ManualClock) SetTime(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Delay advances the clock by d without blocking, honouring cancellation.
func (c *ManualClock) Delay(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.Advance(d)
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
