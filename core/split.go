package core

import (
	"github.com/drwave-www/waveengine/model"
)

// splitPolygon partitions one ring at the front coordinate into the rings
// behind the front (traversed) and ahead of it (remaining). Vertices
// exactly on the front belong to both sides, so the shared seam
// reconstructs the original ring when the two sides are rejoined.
//
// Cut indices are assigned deterministically from edge position in the
// ring, starting at nextCut and increasing once per strict crossing; the
// traversed-side and remaining-side vertices produced by the same crossing
// carry the same index. The returned next index lets a caller thread the
// sequence across the polygons of one recomputation.
func splitPolygon(p model.Polygon, front float64, dir model.Direction, nextCut int) (traversed, remaining []model.Polygon, cutEnd int) {
	onLon := dir.Horizontal()
	// For west/south travel the swept side is the high-coordinate side.
	behindGE := dir == model.DirectionWest || dir == model.DirectionSouth

	bb := p.BBox()
	var lo, hi float64
	if onLon {
		lo, hi = bb.West, bb.East
	} else {
		lo, hi = bb.South, bb.North
	}

	// Whole-ring fast paths, boundary inclusive on the traversed side.
	if behindGE {
		if lo >= front {
			return []model.Polygon{p}, nil, nextCut
		}
		if hi < front {
			return nil, []model.Polygon{p}, nextCut
		}
	} else {
		if hi <= front {
			return []model.Polygon{p}, nil, nextCut
		}
		if lo > front {
			return nil, []model.Polygon{p}, nextCut
		}
	}

	verts := p.Vertices()
	cuts, cutEnd := assignCutIndices(verts, front, onLon, nextCut)

	behind := clipRing(verts, front, onLon, behindGE, cuts)
	ahead := clipRing(verts, front, onLon, !behindGE, cuts)

	if ring := ringPolygon(behind); ring != nil {
		traversed = append(traversed, *ring)
	}
	if ring := ringPolygon(ahead); ring != nil {
		remaining = append(remaining, *ring)
	}
	return traversed, remaining, cutEnd
}

// assignCutIndices walks the ring edges in order and gives every edge that
// strictly crosses the front line a cut index. Edges touching the line at
// a vertex produce no cut; the vertex itself is shared by both sides.
func assignCutIndices(verts []model.Vertex, front float64, onLon bool, next int) (map[int]int, int) {
	cuts := make(map[int]int)
	n := len(verts)
	for i := 0; i < n; i++ {
		ca := ringCoord(verts[i], onLon)
		cb := ringCoord(verts[(i+1)%n], onLon)
		if (ca < front && cb > front) || (ca > front && cb < front) {
			cuts[i] = next
			next++
		}
	}
	return cuts, next
}

// clipRing keeps the side of the ring satisfying the half-plane test,
// inserting the pre-assigned cut vertex on every strictly crossing edge.
func clipRing(verts []model.Vertex, front float64, onLon, keepGE bool, cuts map[int]int) []model.Vertex {
	n := len(verts)
	var out []model.Vertex
	for i := 0; i < n; i++ {
		a := verts[i]
		b := verts[(i+1)%n]
		ca := ringCoord(a, onLon)

		keep := ca <= front
		if keepGE {
			keep = ca >= front
		}
		if keep {
			out = append(out, a)
		}
		if idx, ok := cuts[i]; ok {
			out = append(out, cutVertex(a, b, front, onLon, idx))
		}
	}
	return dedupeRing(out)
}

// cutVertex interpolates the crossing point of edge a-b with the front
// line and tags it with the cut index and the original edge endpoints.
func cutVertex(a, b model.Vertex, front float64, onLon bool, idx int) model.Vertex {
	ca := ringCoord(a, onLon)
	cb := ringCoord(b, onLon)
	t := (front - ca) / (cb - ca)

	var pos model.Position
	if onLon {
		pos = model.Position{Lat: a.Lat + t*(b.Lat-a.Lat), Lon: front}
	} else {
		pos = model.Position{Lat: front, Lon: a.Lon + t*(b.Lon-a.Lon)}
	}
	return model.Vertex{
		Position: pos,
		Cut: &model.CutInfo{
			Index: idx,
			Left:  a.Position,
			Right: b.Position,
		},
	}
}

func ringCoord(v model.Vertex, onLon bool) float64 {
	if onLon {
		return v.Lon
	}
	return v.Lat
}

// unwrapRing shifts a ring's longitudes into the box's unwrapped frame
// [west, west+width], the frame FrontCoordinate reports in. Splitting a
// wrapping area in raw coordinates would misclassify rings east of the
// antimeridian, so the splitter always sees unwrapped longitudes.
func unwrapRing(bb model.BoundingBox, p model.Polygon) model.Polygon {
	src := p.Vertices()
	verts := make([]model.Vertex, len(src))
	for i, v := range src {
		verts[i] = unwrapVertex(bb, v)
	}
	return model.NewPolygonFromVertices(verts)
}

// rewrapRings maps longitudes past the antimeridian back into
// [-180, 180], undoing unwrapRing on split output.
func rewrapRings(polys []model.Polygon) []model.Polygon {
	for i, p := range polys {
		src := p.Vertices()
		verts := make([]model.Vertex, len(src))
		for j, v := range src {
			verts[j] = rewrapVertex(v)
		}
		polys[i] = model.NewPolygonFromVertices(verts)
	}
	return polys
}

func unwrapVertex(bb model.BoundingBox, v model.Vertex) model.Vertex {
	v.Lon = unwrapLon(bb, v.Lon)
	if v.Cut != nil {
		c := *v.Cut
		c.Left.Lon = unwrapLon(bb, c.Left.Lon)
		c.Right.Lon = unwrapLon(bb, c.Right.Lon)
		v.Cut = &c
	}
	return v
}

func rewrapVertex(v model.Vertex) model.Vertex {
	v.Lon = rewrapLon(v.Lon)
	if v.Cut != nil {
		c := *v.Cut
		c.Left.Lon = rewrapLon(c.Left.Lon)
		c.Right.Lon = rewrapLon(c.Right.Lon)
		v.Cut = &c
	}
	return v
}

func rewrapLon(lon float64) float64 {
	if lon > 180 {
		return lon - 360
	}
	return lon
}

// stripSeamMarkers drops cut markers from a previous snapshot's rings.
// Once both sides of a seam are traversed the seam is interior; cut
// markers describe the current front line only, so an incremental update
// clears the old ones before splitting again.
func stripSeamMarkers(polys []model.Polygon) []model.Polygon {
	out := make([]model.Polygon, len(polys))
	for i, p := range polys {
		src := p.Vertices()
		marked := false
		for _, v := range src {
			if v.Cut != nil {
				marked = true
				break
			}
		}
		if !marked {
			out[i] = p
			continue
		}
		verts := make([]model.Vertex, len(src))
		for j, v := range src {
			v.Cut = nil
			verts[j] = v
		}
		out[i] = model.NewPolygonFromVertices(verts)
	}
	return out
}

// dedupeRing drops consecutive coincident vertices, including a trailing
// vertex equal to the first. Clipping a vertex that lies exactly on the
// front can emit such duplicates.
func dedupeRing(verts []model.Vertex) []model.Vertex {
	if len(verts) == 0 {
		return nil
	}
	out := verts[:0]
	for _, v := range verts {
		if len(out) > 0 && out[len(out)-1].Position == v.Position {
			continue
		}
		out = append(out, v)
	}
	if len(out) > 1 && out[0].Position == out[len(out)-1].Position {
		out = out[:len(out)-1]
	}
	return out
}

// ringPolygon wraps clipped vertices as a Polygon, discarding degenerate
// output (fewer than 3 vertices or zero area slivers along the cut line).
func ringPolygon(verts []model.Vertex) *model.Polygon {
	if len(verts) < 3 {
		return nil
	}
	p := model.NewPolygonFromVertices(verts)
	if p.Area() == 0 {
		return nil
	}
	return &p
}
