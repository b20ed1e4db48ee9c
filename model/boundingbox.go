package model

import "math"

// BoundingBox is a south/west/north/east extent in decimal degrees.
// South <= North always; East < West means the box wraps the antimeridian.
type BoundingBox struct {
	South float64
	West  float64
	North float64
	East  float64
}

// BoundingBoxFromCorners constructs a box from its southwest and northeast
// corners. Callers supply correctly ordered corners; only south <= north is
// assumed downstream.
func BoundingBoxFromCorners(southwest, northeast Position) BoundingBox {
	return BoundingBox{
		South: southwest.Lat,
		West:  southwest.Lon,
		North: northeast.Lat,
		East:  northeast.Lon,
	}
}

// LatitudeOfWidestPart returns the latitude at which the box's east-west
// ground distance is maximal: 0 when the box straddles the equator (or is
// symmetric about it), otherwise whichever edge latitude is closer to the
// equator. A degenerate box returns its single latitude.
func (b BoundingBox) LatitudeOfWidestPart() float64 {
	switch {
	case b.South < 0 && b.North > 0:
		return 0
	case b.South == -b.North:
		return 0
	case math.Abs(b.South) <= math.Abs(b.North):
		return b.South
	default:
		return b.North
	}
}

// Width returns the east-west extent in degrees, accounting for boxes that
// wrap the antimeridian.
func (b BoundingBox) Width() float64 {
	w := b.East - b.West
	if w < 0 {
		w += 360
	}
	return w
}

// Height returns the north-south extent in degrees.
func (b BoundingBox) Height() float64 {
	return b.North - b.South
}

// Contains reports whether p lies within the box, boundary inclusive.
func (b BoundingBox) Contains(p Position) bool {
	if p.Lat < b.South || p.Lat > b.North {
		return false
	}
	if b.East < b.West {
		// Wrapping box: inside when east of West or west of East.
		return p.Lon >= b.West || p.Lon <= b.East
	}
	return p.Lon >= b.West && p.Lon <= b.East
}

// Union returns the smallest box containing both b and other. Wrapping boxes
// are not merged across the antimeridian; the engine only unions rings that
// already share a non-wrapping extent.
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	return BoundingBox{
		South: math.Min(b.South, other.South),
		West:  math.Min(b.West, other.West),
		North: math.Max(b.North, other.North),
		East:  math.Max(b.East, other.East),
	}
}
