package model

// Position is a geographic coordinate in decimal degrees.
type Position struct {
	Lat float64
	Lon float64
}

// CutInfo marks a vertex synthesised where the wavefront crossed a polygon
// edge. Index correlates the two half-edges produced by the same cut: the
// traversed-side and remaining-side rings each carry one vertex with this
// index at the same coordinate, so the original ring can be reassembled by
// joining matching indices. Left and Right are the original edge endpoints
// the cut interpolates between, in ring order.
type CutInfo struct {
	Index int
	Left  Position
	Right Position
}

// Vertex is one polygon ring vertex. Cut is nil for original vertices and
// set for vertices inserted by a wavefront split. Cut vertices only live for
// the duration of the WavePolygons snapshot that produced them.
type Vertex struct {
	Position
	Cut *CutInfo
}

// VertexAt wraps a plain coordinate as an original (uncut) vertex.
func VertexAt(lat, lon float64) Vertex {
	return Vertex{Position: Position{Lat: lat, Lon: lon}}
}
