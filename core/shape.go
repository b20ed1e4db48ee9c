package core

import (
	"math"
	"time"

	"github.com/drwave-www/waveengine/model"
)

// Shape models how a wavefront moves across an area. All variants share
// the same contract: total crossing duration, a behind-the-front predicate
// for hit detection, and the travel time from the current front to a point.
// Elapsed durations below zero are treated as zero (front at its start
// position).
type Shape interface {
	Duration(area *model.Area) time.Duration
	Behind(area *model.Area, elapsed time.Duration, p model.Position) bool
	TimeToReach(area *model.Area, elapsed time.Duration, p model.Position) time.Duration
}

// LinearShape is a straight front sweeping the area's bounding box at
// constant ground speed in one compass direction.
type LinearShape struct {
	Speed     float64 // metres per second
	Direction model.Direction
}

// Duration returns the time for the front to cross the bounding box. For
// east/west travel the width is measured at the latitude where the box is
// widest; a zero-extent box crosses instantaneously.
func (s LinearShape) Duration(area *model.Area) time.Duration {
	bb := area.BBox()
	var meters float64
	if s.Direction.Horizontal() {
		meters = longitudeSpanMeters(bb.Width(), bb.LatitudeOfWidestPart())
	} else {
		meters = latitudeSpanMeters(bb.Height())
	}
	if meters <= 0 {
		return 0
	}
	return time.Duration(meters / s.Speed * float64(time.Second))
}

// FrontCoordinate returns the front's current coordinate along the travel
// axis: a longitude for east/west travel (evaluated at refLat, since the
// crossing distance depends on the latitude row), a latitude for
// north/south travel (refLat is ignored). The result is not clamped to the
// box; a front past the far edge indicates the wave has fully crossed.
func (s LinearShape) FrontCoordinate(area *model.Area, elapsed time.Duration, refLat float64) float64 {
	if elapsed < 0 {
		elapsed = 0
	}
	bb := area.BBox()

	// Longitudes are handled in the unwrapped frame [west, west+width] so a
	// box wrapping the antimeridian sweeps continuously through 180.
	var maxDist, span float64
	if s.Direction.Horizontal() {
		span = bb.Width()
		maxDist = longitudeSpanMeters(span, refLat)
	} else {
		span = bb.Height()
		maxDist = latitudeSpanMeters(span)
	}

	if maxDist <= 0 {
		// Zero extent: instantaneous full coverage.
		switch s.Direction {
		case model.DirectionEast:
			return bb.West + span
		case model.DirectionWest:
			return bb.West
		case model.DirectionNorth:
			return bb.North
		default:
			return bb.South
		}
	}

	frac := s.Speed * elapsed.Seconds() / maxDist
	switch s.Direction {
	case model.DirectionEast:
		return bb.West + frac*span
	case model.DirectionWest:
		return bb.West + span - frac*span
	case model.DirectionNorth:
		return bb.South + frac*span
	default:
		return bb.North - frac*span
	}
}

// Behind reports whether p has been passed by the front, boundary
// inclusive: a point exactly on the front counts as traversed.
func (s LinearShape) Behind(area *model.Area, elapsed time.Duration, p model.Position) bool {
	front := s.FrontCoordinate(area, elapsed, p.Lat)
	switch s.Direction {
	case model.DirectionEast:
		return unwrapLon(area.BBox(), p.Lon) <= front
	case model.DirectionWest:
		return unwrapLon(area.BBox(), p.Lon) >= front
	case model.DirectionNorth:
		return p.Lat <= front
	default:
		return p.Lat >= front
	}
}

// unwrapLon maps lon into the box's unwrapped longitude frame, matching
// the frame FrontCoordinate reports in.
func unwrapLon(bb model.BoundingBox, lon float64) float64 {
	if bb.East < bb.West && lon < bb.West {
		return lon + 360
	}
	return lon
}

// TimeToReach returns the unsigned travel time from the current front to
// p. It does not distinguish "already hit" from "approaching"; callers
// pair it with Behind.
func (s LinearShape) TimeToReach(area *model.Area, elapsed time.Duration, p model.Position) time.Duration {
	front := s.FrontCoordinate(area, elapsed, p.Lat)
	var meters float64
	if s.Direction.Horizontal() {
		meters = LongitudeDistance(front, unwrapLon(area.BBox(), p.Lon), p.Lat)
	} else {
		meters = latitudeSpanMeters(p.Lat - front)
	}
	return time.Duration(meters / s.Speed * float64(time.Second))
}

// CircularShape is a front expanding radially from an epicenter at
// constant ground speed.
type CircularShape struct {
	Speed     float64 // metres per second
	Epicenter model.Position
}

// Duration returns the time for the front to reach the farthest corner of
// the area's bounding box.
func (s CircularShape) Duration(area *model.Area) time.Duration {
	bb := area.BBox()
	corners := []model.Position{
		{Lat: bb.South, Lon: bb.West},
		{Lat: bb.South, Lon: bb.East},
		{Lat: bb.North, Lon: bb.West},
		{Lat: bb.North, Lon: bb.East},
	}
	max := 0.0
	for _, c := range corners {
		max = math.Max(max, GreatCircleDistance(s.Epicenter, c))
	}
	if max <= 0 {
		return 0
	}
	return time.Duration(max / s.Speed * float64(time.Second))
}

// Radius returns the front's current radius in metres.
func (s CircularShape) Radius(elapsed time.Duration) float64 {
	if elapsed < 0 {
		elapsed = 0
	}
	return s.Speed * elapsed.Seconds()
}

// Behind reports whether p lies inside the expanded front, boundary
// inclusive.
func (s CircularShape) Behind(area *model.Area, elapsed time.Duration, p model.Position) bool {
	return GreatCircleDistance(s.Epicenter, p) <= s.Radius(elapsed)
}

// TimeToReach returns the unsigned travel time between the front circle
// and p.
func (s CircularShape) TimeToReach(area *model.Area, elapsed time.Duration, p model.Position) time.Duration {
	dist := math.Abs(GreatCircleDistance(s.Epicenter, p) - s.Radius(elapsed))
	return time.Duration(dist / s.Speed * float64(time.Second))
}
