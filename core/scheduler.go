package core

import "time"

// ProximitySignal is what the observation loop knows when choosing its
// next recomputation interval.
type ProximitySignal struct {
	// EventRunning reports whether the event's wave is currently between
	// start and finish.
	EventRunning bool
	// TimeToHit is the predicted front-to-user travel time. Only
	// meaningful when TimeToHitKnown is set; unknown proximity (no
	// position fix) is treated as "not imminent".
	TimeToHit      time.Duration
	TimeToHitKnown bool
}

// SchedulePolicy maps hit proximity to a recomputation interval, trading
// timing precision near a hit against CPU and battery further out. It is
// a pure function of the signal, re-evaluated on every tick by the
// observation loop.
type SchedulePolicy struct {
	// Intervals, finest to coarsest.
	Imminent time.Duration
	Near     time.Duration
	Soon     time.Duration
	Routine  time.Duration
	Idle     time.Duration

	// Proximity windows selecting the first three intervals; beyond
	// SoonWithin but within RoutineWithin the Routine interval applies,
	// and past that the Idle floor.
	ImminentWithin time.Duration
	NearWithin     time.Duration
	SoonWithin     time.Duration
	RoutineWithin  time.Duration
}

// DefaultSchedulePolicy returns the standard tiers: tens of milliseconds
// when a hit is imminent out to a long floor when the event is idle.
func DefaultSchedulePolicy() SchedulePolicy {
	return SchedulePolicy{
		Imminent: 50 * time.Millisecond,
		Near:     250 * time.Millisecond,
		Soon:     time.Second,
		Routine:  5 * time.Second,
		Idle:     30 * time.Second,

		ImminentWithin: 2 * time.Second,
		NearWithin:     10 * time.Second,
		SoonWithin:     time.Minute,
		RoutineWithin:  10 * time.Minute,
	}
}

// ApplyDefaults fills zero or negative fields from DefaultSchedulePolicy,
// so a partially specified policy stays usable.
func (p SchedulePolicy) ApplyDefaults() SchedulePolicy {
	def := DefaultSchedulePolicy()
	fill := func(v *time.Duration, d time.Duration) {
		if *v <= 0 {
			*v = d
		}
	}
	fill(&p.Imminent, def.Imminent)
	fill(&p.Near, def.Near)
	fill(&p.Soon, def.Soon)
	fill(&p.Routine, def.Routine)
	fill(&p.Idle, def.Idle)
	fill(&p.ImminentWithin, def.ImminentWithin)
	fill(&p.NearWithin, def.NearWithin)
	fill(&p.SoonWithin, def.SoonWithin)
	fill(&p.RoutineWithin, def.RoutineWithin)
	return p
}

// Interval returns the next recomputation interval for the signal.
//
// The hit-proximity tiers are evaluated before the coarse running-status
// cadence: when a hit-timing check and a routine status check fall due on
// the same tick, the fine-grained hit interval wins. Under-sampling near
// a hit causes missed hits, so this ordering is load-bearing and covered
// by a regression test.
func (p SchedulePolicy) Interval(s ProximitySignal) time.Duration {
	if s.EventRunning && s.TimeToHitKnown {
		tth := s.TimeToHit
		if tth < 0 {
			tth = 0
		}
		switch {
		case tth <= p.ImminentWithin:
			return p.Imminent
		case tth <= p.NearWithin:
			return p.Near
		case tth <= p.SoonWithin:
			return p.Soon
		case tth <= p.RoutineWithin:
			return p.Routine
		default:
			return p.Idle
		}
	}

	if !s.EventRunning {
		return p.Idle
	}
	// Running but proximity unknown: neither aggressive nor lax.
	return p.Routine
}
