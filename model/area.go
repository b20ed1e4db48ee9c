package model

// Area is an event's spatial extent: a bounding box plus the boundary
// polygons inside it. The box is taken from the event definition when
// supplied, otherwise derived from the polygons.
type Area struct {
	bbox     BoundingBox
	polygons []Polygon
}

// NewArea constructs an Area with an explicit bounding box.
func NewArea(bbox BoundingBox, polygons []Polygon) *Area {
	return &Area{bbox: bbox, polygons: polygons}
}

// AreaFromPolygons constructs an Area whose box is the union of the
// polygon boxes. Panics (via NewPolygonFromVertices upstream) never occur
// here; an empty polygon list yields a zero box.
func AreaFromPolygons(polygons []Polygon) *Area {
	var bbox BoundingBox
	for i, p := range polygons {
		if i == 0 {
			bbox = p.BBox()
			continue
		}
		bbox = bbox.Union(p.BBox())
	}
	return &Area{bbox: bbox, polygons: polygons}
}

// BBox returns the area's bounding box.
func (a *Area) BBox() BoundingBox { return a.bbox }

// Polygons returns the boundary polygons. The slice is shared; callers
// must not mutate it.
func (a *Area) Polygons() []Polygon { return a.polygons }

// Contains reports whether p lies inside any boundary polygon. A user
// outside every polygon is outside the Area even when inside the box.
func (a *Area) Contains(p Position) bool {
	if !a.bbox.Contains(p) {
		return false
	}
	for _, poly := range a.polygons {
		if poly.Contains(p) {
			return true
		}
	}
	return false
}
