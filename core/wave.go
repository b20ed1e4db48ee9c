package core

import (
	"fmt"
	"time"

	"github.com/drwave-www/waveengine/model"
	"github.com/drwave-www/waveengine/timectrl"
)

// Wave computes the state of one event's wavefront: its current position,
// the traversed/remaining polygon split, and hit detection for the
// observed user. All collaborators are injected at construction; a Wave
// holds no mutable state of its own and every query reads the clock fresh.
type Wave struct {
	event     *model.EventDefinition
	clock     timectrl.Clock
	positions PositionProvider
	shape     Shape
	// linear is set for straight-front shapes, which are the only shapes
	// the polygon splitter supports.
	linear *LinearShape
}

// NewWave builds the wave model for an event definition. Configuration
// errors (nil event or area, non-positive speed) fail here rather than
// surfacing later as bad geometry.
func NewWave(event *model.EventDefinition, clock timectrl.Clock, positions PositionProvider) (*Wave, error) {
	if event == nil {
		return nil, fmt.Errorf("wave requires an event definition")
	}
	if event.Area == nil {
		return nil, fmt.Errorf("event %q has no area", event.ID)
	}
	if clock == nil {
		return nil, fmt.Errorf("wave requires a clock")
	}
	if event.Wave.Speed <= 0 {
		return nil, fmt.Errorf("event %q has non-positive wave speed %v", event.ID, event.Wave.Speed)
	}

	w := &Wave{
		event:     event,
		clock:     clock,
		positions: positions,
	}
	switch event.Wave.Kind {
	case model.WaveCircular:
		w.shape = CircularShape{Speed: event.Wave.Speed, Epicenter: event.Wave.Epicenter}
	default:
		linear := LinearShape{Speed: event.Wave.Speed, Direction: event.Wave.Direction}
		w.shape = linear
		w.linear = &linear
	}
	return w, nil
}

// Event returns the definition this wave was built from.
func (w *Wave) Event() *model.EventDefinition { return w.event }

// Elapsed returns the time since the wave's start; negative before the
// start.
func (w *Wave) Elapsed() time.Duration {
	return w.clock.Now().Sub(w.event.WaveStart)
}

// Duration returns the total time for the wave to cross the area.
func (w *Wave) Duration() time.Duration {
	return w.shape.Duration(w.event.Area)
}

// Progression returns the elapsed fraction of the crossing, 0 before the
// start. Values above 1 mean the wave has fully crossed; a zero-duration
// (zero extent) wave reports 1 as soon as it starts.
func (w *Wave) Progression() float64 {
	elapsed := w.Elapsed()
	if elapsed < 0 {
		return 0
	}
	d := w.Duration()
	if d <= 0 {
		return 1
	}
	return float64(elapsed) / float64(d)
}

// FrontLongitude returns the current front longitude for an east/west
// linear wave, evaluated at the latitude row refLat. The front is a
// straight line approximation; callers pass the latitude of the point they
// care about. The second return is false when the wave has no front
// longitude (circular shapes, north/south travel).
func (w *Wave) FrontLongitude(refLat float64) (float64, bool) {
	if w.linear == nil || !w.linear.Direction.Horizontal() {
		return 0, false
	}
	return w.linear.FrontCoordinate(w.event.Area, w.Elapsed(), refLat), true
}

// UserHit reports whether the observed user has been swept by the front.
// A user with no position fix is never hit, and neither is a user outside
// the area's boundary polygons even when the front has geometrically
// passed them.
func (w *Wave) UserHit() bool {
	pos := w.positions.Current()
	if pos == nil {
		return false
	}
	if !w.event.Area.Contains(*pos) {
		return false
	}
	return w.shape.Behind(w.event.Area, w.Elapsed(), *pos)
}

// TimeUntilHit returns the travel time from the current front to the
// user's position, and false when no position fix is available. The value
// is an unsigned front-to-user quantity: it stays finite after the user
// has been hit, so callers pair it with UserHit to distinguish "already
// hit" from "approaching".
func (w *Wave) TimeUntilHit() (time.Duration, bool) {
	pos := w.positions.Current()
	if pos == nil {
		return 0, false
	}
	return w.shape.TimeToReach(w.event.Area, w.Elapsed(), *pos), true
}

// WavePolygons splits the area into traversed and remaining polygon sets
// at the current instant. It returns nil when the area has no polygons,
// when the shape has no straight front (circular waves), or when the wave
// has not started and there is no prior state to build on. Withholding an
// answer beats emitting an inconsistent split.
//
// In UpdateAdd mode the split continues from last: traversed polygons stay
// traversed and only last's remaining set is re-split, which is valid
// under monotonic forward progress. UpdateRecompose ignores last and
// recomputes both sets from the original area, for use after observation
// gaps or restarts. The previous snapshot passed in must be the result of
// the immediately preceding call for ADD semantics to hold.
func (w *Wave) WavePolygons(last *model.WavePolygons, mode model.UpdateMode) *model.WavePolygons {
	if w.linear == nil {
		return nil
	}
	if len(w.event.Area.Polygons()) == 0 {
		return nil
	}

	now := w.clock.Now()
	elapsed := now.Sub(w.event.WaveStart)
	if elapsed <= 0 && last == nil {
		return nil
	}

	var traversed, remaining []model.Polygon
	source := w.event.Area.Polygons()
	if mode == model.UpdateAdd && last != nil {
		// Seams carried over from the previous snapshot are interior now;
		// this snapshot's cut markers describe the current front only.
		traversed = append(traversed, stripSeamMarkers(last.Traversed)...)
		source = stripSeamMarkers(last.Remaining)
	}

	// Wrapping areas are split in the unwrapped longitude frame the front
	// is reported in, then mapped back.
	bb := w.event.Area.BBox()
	wraps := w.linear.Direction.Horizontal() && bb.East < bb.West

	cut := 0
	for _, poly := range source {
		ref := poly.BBox().LatitudeOfWidestPart()
		front := w.linear.FrontCoordinate(w.event.Area, elapsed, ref)
		if wraps {
			poly = unwrapRing(bb, poly)
		}
		t, r, next := splitPolygon(poly, front, w.linear.Direction, cut)
		cut = next
		if wraps {
			t = rewrapRings(t)
			r = rewrapRings(r)
		}
		traversed = append(traversed, t...)
		remaining = append(remaining, r...)
	}

	return &model.WavePolygons{
		Timestamp: now,
		Traversed: traversed,
		Remaining: remaining,
	}
}
