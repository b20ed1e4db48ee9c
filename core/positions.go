package core

import (
	"sync"

	"github.com/drwave-www/waveengine/model"
)

// PositionProvider supplies the most recent GPS reading. Current returns
// nil while no fix is available; callers treat that as a normal, frequent
// state rather than an error.
type PositionProvider interface {
	Current() *model.Position
}

// FixedPosition is a provider pinned to one coordinate, for demos and
// tests.
type FixedPosition model.Position

// Current returns the fixed coordinate.
func (p FixedPosition) Current() *model.Position {
	pos := model.Position(p)
	return &pos
}

// NoPosition is a provider that never has a fix.
type NoPosition struct{}

// Current always returns nil.
func (NoPosition) Current() *model.Position { return nil }

// PositionTracker holds the latest reading from a single shared position
// source and fans it out to every observed event. Set is called by the
// platform's location feed; observers only read.
type PositionTracker struct {
	mu  sync.RWMutex
	pos *model.Position
}

// NewPositionTracker constructs a tracker with no fix.
func NewPositionTracker() *PositionTracker {
	return &PositionTracker{}
}

// Set records a new reading.
func (t *PositionTracker) Set(p model.Position) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pos = &p
}

// Clear drops the current fix.
func (t *PositionTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pos = nil
}

// Current returns the latest reading, or nil when there is none.
func (t *PositionTracker) Current() *model.Position {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pos
}
