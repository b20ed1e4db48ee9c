package model

import (
	"fmt"
	"math"
)

// onSegmentEpsilon bounds the cross-product test deciding whether a point
// lies exactly on a polygon edge. Degrees-squared scale.
const onSegmentEpsilon = 1e-12

// Polygon is an ordered, closed ring of vertices. The closing edge from the
// last vertex back to the first is implicit; the vertex slice never repeats
// the first vertex. Polygons are immutable after construction and memoize
// their bounding box.
type Polygon struct {
	vertices []Vertex
	bbox     BoundingBox
}

// NewPolygon builds a ring from plain coordinates. A trailing vertex equal
// to the first is dropped. Fewer than 3 distinct vertices is a programmer
// error and panics; the caller is responsible for supplying a simple
// (non-self-intersecting) ring.
func NewPolygon(positions []Position) Polygon {
	verts := make([]Vertex, 0, len(positions))
	for _, p := range positions {
		verts = append(verts, Vertex{Position: p})
	}
	return NewPolygonFromVertices(verts)
}

// NewPolygonFromVertices builds a ring that may already carry cut vertices.
// Used by the wavefront splitter; panics on rings with fewer than 3 vertices.
func NewPolygonFromVertices(vertices []Vertex) Polygon {
	if n := len(vertices); n > 1 && vertices[0].Position == vertices[n-1].Position {
		vertices = vertices[:n-1]
	}
	if len(vertices) < 3 {
		panic(fmt.Sprintf("polygon requires at least 3 vertices, got %d", len(vertices)))
	}

	bbox := BoundingBox{
		South: math.Inf(1), West: math.Inf(1),
		North: math.Inf(-1), East: math.Inf(-1),
	}
	for _, v := range vertices {
		bbox.South = math.Min(bbox.South, v.Lat)
		bbox.North = math.Max(bbox.North, v.Lat)
		bbox.West = math.Min(bbox.West, v.Lon)
		bbox.East = math.Max(bbox.East, v.Lon)
	}

	return Polygon{vertices: vertices, bbox: bbox}
}

// Vertices returns the ring vertices in order, without the implicit closing
// vertex. The slice is shared; callers must not mutate it.
func (p Polygon) Vertices() []Vertex { return p.vertices }

// BBox returns the minimal box containing all vertices, computed once at
// construction.
func (p Polygon) BBox() BoundingBox { return p.bbox }

// Contains reports whether pt is inside the ring. The boundary is
// inclusive: a point exactly on an edge or vertex counts as inside. This
// matches the wavefront tie-break where a vertex lying exactly on the front
// is treated as traversed.
func (p Polygon) Contains(pt Position) bool {
	if !p.bbox.Contains(pt) {
		return false
	}

	inside := false
	n := len(p.vertices)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a := p.vertices[j].Position
		b := p.vertices[i].Position
		if onSegment(pt, a, b) {
			return true
		}
		if (a.Lat > pt.Lat) != (b.Lat > pt.Lat) {
			x := a.Lon + (pt.Lat-a.Lat)/(b.Lat-a.Lat)*(b.Lon-a.Lon)
			if pt.Lon < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Area returns the ring's planar (shoelace) area in square degrees. It is
// an internal consistency metric, not a ground area; the partition
// invariant compares traversed+remaining against the original in this
// metric.
func (p Polygon) Area() float64 {
	sum := 0.0
	n := len(p.vertices)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a := p.vertices[j].Position
		b := p.vertices[i].Position
		sum += a.Lon*b.Lat - b.Lon*a.Lat
	}
	return math.Abs(sum) / 2
}

// onSegment reports whether pt lies on the segment a-b.
func onSegment(pt, a, b Position) bool {
	cross := (b.Lon-a.Lon)*(pt.Lat-a.Lat) - (b.Lat-a.Lat)*(pt.Lon-a.Lon)
	if math.Abs(cross) > onSegmentEpsilon {
		return false
	}
	return pt.Lon >= math.Min(a.Lon, b.Lon) && pt.Lon <= math.Max(a.Lon, b.Lon) &&
		pt.Lat >= math.Min(a.Lat, b.Lat) && pt.Lat <= math.Max(a.Lat, b.Lat)
}
