package model

import "time"

// Direction is the compass direction a linear wavefront travels in.
type Direction int

const (
	DirectionEast Direction = iota
	DirectionWest
	DirectionNorth
	DirectionSouth
)

// String returns the lowercase compass name, matching manifest encoding.
func (d Direction) String() string {
	switch d {
	case DirectionEast:
		return "east"
	case DirectionWest:
		return "west"
	case DirectionNorth:
		return "north"
	case DirectionSouth:
		return "south"
	default:
		return "unknown"
	}
}

// Horizontal reports whether the front sweeps along longitude (east/west
// travel) rather than latitude.
func (d Direction) Horizontal() bool {
	return d == DirectionEast || d == DirectionWest
}

// UpdateMode selects how a wave-state recomputation uses the previous
// snapshot.
type UpdateMode int

const (
	// UpdateAdd grows the traversed set incrementally from the previous
	// snapshot; only the remaining polygons are re-split. Valid under
	// monotonic forward progress.
	UpdateAdd UpdateMode = iota
	// UpdateRecompose discards the previous split and recomputes both
	// sets from the original area. Used after observation gaps or on
	// restart.
	UpdateRecompose
)

// String returns "add" or "recompose" for logging and metric labels.
func (m UpdateMode) String() string {
	if m == UpdateRecompose {
		return "recompose"
	}
	return "add"
}

// WavePolygons is an immutable snapshot of the area partition at an
// instant: the polygons already swept by the front and those not yet
// swept. Reassembling both sets along matching cut indices reconstructs
// the original area exactly; no area is gained or lost, only partitioned.
type WavePolygons struct {
	Timestamp time.Time
	Traversed []Polygon
	Remaining []Polygon
}
