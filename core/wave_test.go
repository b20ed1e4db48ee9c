package core

import (
	"math"
	"testing"
	"time"

	"github.com/drwave-www/waveengine/model"
	"github.com/drwave-www/waveengine/timectrl"
)

var waveStart = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func linearEvent() *model.EventDefinition {
	poly := model.NewPolygon([]model.Position{
		{Lat: 11, Lon: 22}, {Lat: 11, Lon: 28}, {Lat: 14, Lon: 28}, {Lat: 14, Lon: 22},
	})
	return &model.EventDefinition{
		ID:        "linear-east",
		Area:      model.NewArea(model.BoundingBox{South: 10, West: 20, North: 15, East: 30}, []model.Polygon{poly}),
		WaveStart: waveStart,
		Wave: model.WaveSpec{
			Kind:           model.WaveLinear,
			Speed:          100,
			Direction:      model.DirectionEast,
			ApproxDuration: 4 * time.Hour,
		},
	}
}

func TestNewWaveValidation(t *testing.T) {
	clock := timectrl.NewManualClock(waveStart)
	if _, err := NewWave(nil, clock, NoPosition{}); err == nil {
		t.Errorf("expected error for nil event")
	}

	noArea := linearEvent()
	noArea.Area = nil
	if _, err := NewWave(noArea, clock, NoPosition{}); err == nil {
		t.Errorf("expected error for missing area")
	}

	if _, err := NewWave(linearEvent(), nil, NoPosition{}); err == nil {
		t.Errorf("expected error for nil clock")
	}

	slow := linearEvent()
	slow.Wave.Speed = 0
	if _, err := NewWave(slow, clock, NoPosition{}); err == nil {
		t.Errorf("expected error for non-positive speed")
	}
}

func TestWaveProgression(t *testing.T) {
	clock := timectrl.NewManualClock(waveStart.Add(-time.Minute))
	w, err := NewWave(linearEvent(), clock, NoPosition{})
	if err != nil {
		t.Fatalf("NewWave: %v", err)
	}

	if got := w.Progression(); got != 0 {
		t.Errorf("progression before start = %v, want 0", got)
	}

	clock.SetTime(waveStart.Add(w.Duration() / 2))
	if got := w.Progression(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("progression at half crossing = %v, want 0.5", got)
	}

	clock.SetTime(waveStart.Add(2 * w.Duration()))
	if got := w.Progression(); got <= 1 {
		t.Errorf("progression after full crossing = %v, want > 1", got)
	}
}

func TestWaveProgressionZeroExtent(t *testing.T) {
	point := linearEvent()
	point.Area = model.NewArea(model.BoundingBox{South: 45, West: 45, North: 45, East: 45}, nil)

	clock := timectrl.NewManualClock(waveStart.Add(time.Second))
	w, err := NewWave(point, clock, NoPosition{})
	if err != nil {
		t.Fatalf("NewWave: %v", err)
	}
	if got := w.Duration(); got != 0 {
		t.Errorf("zero-extent Duration = %v, want 0", got)
	}
	// A zero-duration wave is done the instant it starts.
	if got := w.Progression(); got != 1 {
		t.Errorf("zero-extent progression = %v, want 1", got)
	}
}

func TestWaveFrontLongitude(t *testing.T) {
	clock := timectrl.NewManualClock(waveStart.Add(600 * time.Second))
	w, err := NewWave(linearEvent(), clock, NoPosition{})
	if err != nil {
		t.Fatalf("NewWave: %v", err)
	}

	maxDist := longitudeSpanMeters(10, 12)
	want := 20 + (100*600/maxDist)*10
	got, ok := w.FrontLongitude(12)
	if !ok {
		t.Fatalf("FrontLongitude reported no front for an eastbound wave")
	}
	if got != want {
		t.Errorf("FrontLongitude(12) = %v, want %v", got, want)
	}

	// The same instant gives a different front longitude on a different
	// latitude row: degrees shrink, so higher rows are further along.
	high, _ := w.FrontLongitude(14)
	low, _ := w.FrontLongitude(11)
	if high <= low {
		t.Errorf("front at lat 14 (%v) must be east of front at lat 11 (%v)", high, low)
	}
}

func TestWaveFrontLongitudeUndefined(t *testing.T) {
	clock := timectrl.NewManualClock(waveStart.Add(time.Hour))

	circ := linearEvent()
	circ.Wave = model.WaveSpec{Kind: model.WaveCircular, Speed: 100, Epicenter: model.Position{Lat: 12.5, Lon: 25}}
	w, err := NewWave(circ, clock, NoPosition{})
	if err != nil {
		t.Fatalf("NewWave: %v", err)
	}
	if lon, ok := w.FrontLongitude(12); ok {
		t.Errorf("circular wave FrontLongitude = (%v, true), want no front longitude", lon)
	}

	north := linearEvent()
	north.Wave.Direction = model.DirectionNorth
	w, err = NewWave(north, clock, NoPosition{})
	if err != nil {
		t.Fatalf("NewWave: %v", err)
	}
	if lat, ok := w.FrontLongitude(12); ok {
		t.Errorf("northbound wave FrontLongitude = (%v, true), want no front longitude", lat)
	}
}

func TestWaveUserHitRequiresContainment(t *testing.T) {
	// Front has crossed the whole box; the user is inside the bounding box
	// but outside every polygon.
	clock := timectrl.NewManualClock(waveStart.Add(6 * time.Hour))
	outside := FixedPosition{Lat: 10.5, Lon: 21}
	w, err := NewWave(linearEvent(), clock, outside)
	if err != nil {
		t.Fatalf("NewWave: %v", err)
	}
	if w.UserHit() {
		t.Errorf("user outside the area polygons must never be hit")
	}

	inside := FixedPosition{Lat: 12.5, Lon: 25}
	w, err = NewWave(linearEvent(), clock, inside)
	if err != nil {
		t.Fatalf("NewWave: %v", err)
	}
	if !w.UserHit() {
		t.Errorf("user inside the polygons must be hit after the wave crossed")
	}

	// Same user before the front reaches them.
	clock.SetTime(waveStart)
	if w.UserHit() {
		t.Errorf("user must not be hit before the front arrives")
	}
}

func TestWaveNoPositionIsSafe(t *testing.T) {
	clock := timectrl.NewManualClock(waveStart.Add(time.Hour))
	w, err := NewWave(linearEvent(), clock, NoPosition{})
	if err != nil {
		t.Fatalf("NewWave: %v", err)
	}
	if w.UserHit() {
		t.Errorf("UserHit without a position fix = true, want false")
	}
	if d, ok := w.TimeUntilHit(); ok || d != 0 {
		t.Errorf("TimeUntilHit without a position fix = (%v, %v), want (0, false)", d, ok)
	}
}

func TestWaveTimeUntilHit(t *testing.T) {
	clock := timectrl.NewManualClock(waveStart)
	pos := FixedPosition{Lat: 12, Lon: 27}
	w, err := NewWave(linearEvent(), clock, pos)
	if err != nil {
		t.Fatalf("NewWave: %v", err)
	}

	got, ok := w.TimeUntilHit()
	if !ok {
		t.Fatalf("TimeUntilHit reported no position")
	}
	want := time.Duration(LongitudeDistance(20, 27, 12) / 100 * float64(time.Second))
	if got != want {
		t.Errorf("TimeUntilHit = %v, want %v", got, want)
	}

	// After the hit the value stays finite; UserHit disambiguates.
	clock.SetTime(waveStart.Add(6 * time.Hour))
	after, ok := w.TimeUntilHit()
	if !ok || after < 0 {
		t.Errorf("TimeUntilHit after the hit = (%v, %v), want a finite unsigned duration", after, ok)
	}
	if !w.UserHit() {
		t.Errorf("UserHit must report true once the front has passed")
	}
}

func TestWavePolygonsNilCases(t *testing.T) {
	// Before the start with no prior snapshot: no answer.
	clock := timectrl.NewManualClock(waveStart.Add(-time.Minute))
	w, err := NewWave(linearEvent(), clock, NoPosition{})
	if err != nil {
		t.Fatalf("NewWave: %v", err)
	}
	if got := w.WavePolygons(nil, model.UpdateAdd); got != nil {
		t.Errorf("WavePolygons before start = %+v, want nil", got)
	}

	// Exactly at the start instant with no prior snapshot.
	clock.SetTime(waveStart)
	if got := w.WavePolygons(nil, model.UpdateAdd); got != nil {
		t.Errorf("WavePolygons at start instant = %+v, want nil", got)
	}

	// An area without polygons has nothing to split.
	bare := linearEvent()
	bare.Area = model.NewArea(bare.Area.BBox(), nil)
	clock.SetTime(waveStart.Add(time.Hour))
	w, err = NewWave(bare, clock, NoPosition{})
	if err != nil {
		t.Fatalf("NewWave: %v", err)
	}
	if got := w.WavePolygons(nil, model.UpdateAdd); got != nil {
		t.Errorf("WavePolygons without polygons = %+v, want nil", got)
	}

	// Circular waves have no straight front to split along.
	circ := linearEvent()
	circ.Wave = model.WaveSpec{Kind: model.WaveCircular, Speed: 100, Epicenter: model.Position{Lat: 12.5, Lon: 25}}
	w, err = NewWave(circ, clock, NoPosition{})
	if err != nil {
		t.Fatalf("NewWave: %v", err)
	}
	if got := w.WavePolygons(nil, model.UpdateAdd); got != nil {
		t.Errorf("WavePolygons for a circular wave = %+v, want nil", got)
	}
}

func TestWavePolygonsPartition(t *testing.T) {
	clock := timectrl.NewManualClock(waveStart)
	w, err := NewWave(linearEvent(), clock, NoPosition{})
	if err != nil {
		t.Fatalf("NewWave: %v", err)
	}
	total := areaSum(w.Event().Area.Polygons())

	for _, elapsed := range []time.Duration{
		15 * time.Minute, time.Hour, 2 * time.Hour, 6 * time.Hour,
	} {
		clock.SetTime(waveStart.Add(elapsed))
		snap := w.WavePolygons(nil, model.UpdateRecompose)
		if snap == nil {
			t.Fatalf("elapsed %v: snapshot is nil", elapsed)
		}
		if !snap.Timestamp.Equal(waveStart.Add(elapsed)) {
			t.Errorf("elapsed %v: timestamp = %v, want clock time", elapsed, snap.Timestamp)
		}
		got := areaSum(snap.Traversed) + areaSum(snap.Remaining)
		if math.Abs(got-total) > 1e-9 {
			t.Errorf("elapsed %v: partition area = %v, want %v", elapsed, got, total)
		}
	}

	// Well past the crossing everything is traversed.
	clock.SetTime(waveStart.Add(6 * time.Hour))
	snap := w.WavePolygons(nil, model.UpdateRecompose)
	if len(snap.Remaining) != 0 {
		t.Errorf("after full crossing: %d remaining polygons, want 0", len(snap.Remaining))
	}
	if math.Abs(areaSum(snap.Traversed)-total) > 1e-9 {
		t.Errorf("after full crossing: traversed area = %v, want %v", areaSum(snap.Traversed), total)
	}
}

func TestWavePolygonsAddMode(t *testing.T) {
	clock := timectrl.NewManualClock(waveStart)
	w, err := NewWave(linearEvent(), clock, NoPosition{})
	if err != nil {
		t.Fatalf("NewWave: %v", err)
	}
	total := areaSum(w.Event().Area.Polygons())

	clock.SetTime(waveStart.Add(30 * time.Minute))
	first := w.WavePolygons(nil, model.UpdateAdd)
	if first == nil {
		t.Fatalf("first snapshot is nil")
	}

	clock.SetTime(waveStart.Add(time.Hour))
	second := w.WavePolygons(first, model.UpdateAdd)
	if second == nil {
		t.Fatalf("second snapshot is nil")
	}

	// Traversed grows monotonically and the partition still holds.
	if areaSum(second.Traversed) < areaSum(first.Traversed) {
		t.Errorf("traversed area shrank: %v -> %v", areaSum(first.Traversed), areaSum(second.Traversed))
	}
	if got := areaSum(second.Traversed) + areaSum(second.Remaining); math.Abs(got-total) > 1e-9 {
		t.Errorf("partition area after ADD = %v, want %v", got, total)
	}

	// Previously traversed polygons are carried over untouched.
	if len(second.Traversed) < len(first.Traversed) {
		t.Errorf("ADD dropped previously traversed polygons: %d -> %d",
			len(first.Traversed), len(second.Traversed))
	}
}

func TestWavePolygonsAddCutMarkersOnCurrentFront(t *testing.T) {
	clock := timectrl.NewManualClock(waveStart)
	w, err := NewWave(linearEvent(), clock, NoPosition{})
	if err != nil {
		t.Fatalf("NewWave: %v", err)
	}

	clock.SetTime(waveStart.Add(30 * time.Minute))
	first := w.WavePolygons(nil, model.UpdateAdd)

	clock.SetTime(waveStart.Add(time.Hour))
	second := w.WavePolygons(first, model.UpdateAdd)
	if second == nil {
		t.Fatalf("second snapshot is nil")
	}

	// Cut markers describe the current front only: each index appears
	// once per side, at matching coordinates, all on the current front
	// line. The seam from the first snapshot is interior now and carries
	// no markers.
	tc := collectCuts(t, second.Traversed)
	rc := collectCuts(t, second.Remaining)
	if len(tc) == 0 || len(tc) != len(rc) {
		t.Fatalf("got %d traversed-side / %d remaining-side cuts, want matching non-empty sets", len(tc), len(rc))
	}

	front := 20 + (100*3600/longitudeSpanMeters(10, 11))*10
	for idx, pos := range tc {
		other, ok := rc[idx]
		if !ok {
			t.Errorf("cut %d missing from the remaining side", idx)
			continue
		}
		if other != pos {
			t.Errorf("cut %d at %+v on traversed side but %+v on remaining side", idx, pos, other)
		}
		if math.Abs(pos.Lon-front) > 1e-9 {
			t.Errorf("cut %d at lon %v, want on the current front %v", idx, pos.Lon, front)
		}
	}
}

func TestWavePolygonsAntimeridian(t *testing.T) {
	// Wrapping box 20 degrees wide; the polygon sits east of the
	// antimeridian, which is the far end of an eastbound sweep.
	poly := model.NewPolygon([]model.Position{
		{Lat: -1, Lon: -179}, {Lat: -1, Lon: -178}, {Lat: 1, Lon: -178}, {Lat: 1, Lon: -179},
	})
	event := &model.EventDefinition{
		ID:        "wrap-east",
		Area:      model.NewArea(model.BoundingBox{South: -5, West: 170, North: 5, East: -170}, []model.Polygon{poly}),
		WaveStart: waveStart,
		Wave: model.WaveSpec{
			Kind:           model.WaveLinear,
			Speed:          100,
			Direction:      model.DirectionEast,
			ApproxDuration: 7 * time.Hour,
		},
	}
	clock := timectrl.NewManualClock(waveStart.Add(time.Minute))
	w, err := NewWave(event, clock, NoPosition{})
	if err != nil {
		t.Fatalf("NewWave: %v", err)
	}

	// One minute in the front is near lon 170; a polygon eleven degrees
	// further along the sweep must not count as traversed.
	snap := w.WavePolygons(nil, model.UpdateRecompose)
	if snap == nil {
		t.Fatalf("snapshot is nil")
	}
	if len(snap.Traversed) != 0 || len(snap.Remaining) != 1 {
		t.Fatalf("one minute in: %d traversed / %d remaining, want 0 / 1",
			len(snap.Traversed), len(snap.Remaining))
	}

	// Advance until the front is halfway through the polygon (unwrapped
	// lon 181.5, i.e. raw lon -178.5).
	maxDist := longitudeSpanMeters(20, 0)
	clock.SetTime(waveStart.Add(time.Duration(0.575 * maxDist / 100 * float64(time.Second))))
	snap = w.WavePolygons(nil, model.UpdateRecompose)
	if len(snap.Traversed) != 1 || len(snap.Remaining) != 1 {
		t.Fatalf("mid-polygon: %d traversed / %d remaining, want 1 / 1",
			len(snap.Traversed), len(snap.Remaining))
	}
	total := poly.Area()
	if got := areaSum(snap.Traversed) + areaSum(snap.Remaining); math.Abs(got-total) > 1e-9 {
		t.Errorf("partition area = %v, want %v", got, total)
	}

	// Output longitudes are back in [-180, 180], with the seam on the
	// raw front longitude.
	for _, set := range [][]model.Polygon{snap.Traversed, snap.Remaining} {
		for _, p := range set {
			for _, v := range p.Vertices() {
				if v.Lon < -180 || v.Lon > 180 {
					t.Fatalf("vertex lon %v outside [-180, 180]", v.Lon)
				}
				if v.Cut != nil && math.Abs(v.Lon-(-178.5)) > 1e-6 {
					t.Errorf("cut vertex at lon %v, want the front at -178.5", v.Lon)
				}
			}
		}
	}

	// Past the whole sweep the polygon is fully traversed.
	clock.SetTime(waveStart.Add(7 * time.Hour))
	snap = w.WavePolygons(nil, model.UpdateRecompose)
	if len(snap.Remaining) != 0 || math.Abs(areaSum(snap.Traversed)-total) > 1e-9 {
		t.Errorf("after full sweep: %d remaining, traversed area %v, want 0 and %v",
			len(snap.Remaining), areaSum(snap.Traversed), total)
	}
}

func TestWavePolygonsAddMatchesRecompose(t *testing.T) {
	clock := timectrl.NewManualClock(waveStart)
	w, err := NewWave(linearEvent(), clock, NoPosition{})
	if err != nil {
		t.Fatalf("NewWave: %v", err)
	}

	clock.SetTime(waveStart.Add(30 * time.Minute))
	first := w.WavePolygons(nil, model.UpdateAdd)

	clock.SetTime(waveStart.Add(time.Hour))
	added := w.WavePolygons(first, model.UpdateAdd)
	fresh := w.WavePolygons(nil, model.UpdateRecompose)

	// The two paths may tile the traversed side differently but must cover
	// the same ground.
	if math.Abs(areaSum(added.Traversed)-areaSum(fresh.Traversed)) > 1e-9 {
		t.Errorf("ADD traversed area %v differs from RECOMPOSE %v",
			areaSum(added.Traversed), areaSum(fresh.Traversed))
	}
	if math.Abs(areaSum(added.Remaining)-areaSum(fresh.Remaining)) > 1e-9 {
		t.Errorf("ADD remaining area %v differs from RECOMPOSE %v",
			areaSum(added.Remaining), areaSum(fresh.Remaining))
	}
}
