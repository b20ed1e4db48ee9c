package model

import "time"

// WaveKind selects the wavefront shape variant.
type WaveKind int

const (
	// WaveLinear is a straight front sweeping the area at constant speed.
	WaveLinear WaveKind = iota
	// WaveCircular is a front expanding radially from an epicenter.
	WaveCircular
)

// WaveSpec is the declarative wave configuration attached to an event.
type WaveSpec struct {
	Kind  WaveKind
	Speed float64 // metres per second over ground
	// Direction applies to linear waves.
	Direction Direction
	// Epicenter applies to circular waves.
	Epicenter Position
	// ApproxDuration is the configured rough crossing time, used for
	// event running/done status. The exact crossing time is computed by
	// the wave model from the area geometry.
	ApproxDuration time.Duration
}

// EventDefinition describes one wave event: where it happens, when its
// wave starts, and how the wave moves. Definitions are immutable once
// stored; observers read but never mutate them.
type EventDefinition struct {
	ID        string
	Name      string
	Area      *Area
	WaveStart time.Time
	Wave      WaveSpec
}

// IsRunning reports whether the wave has started and not yet finished at
// the given instant.
func (e *EventDefinition) IsRunning(now time.Time) bool {
	return !now.Before(e.WaveStart) && !e.IsDone(now)
}

// IsDone reports whether the configured wave duration has fully elapsed.
func (e *EventDefinition) IsDone(now time.Time) bool {
	return !now.Before(e.WaveStart.Add(e.Wave.ApproxDuration))
}
