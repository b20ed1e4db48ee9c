package core

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/drwave-www/waveengine/kb"
	"github.com/drwave-www/waveengine/model"
)

// EventManifest is a small summary of what was loaded from JSON. Mainly
// useful for logging from main().
type EventManifest struct {
	EventIDs []string
}

// internal JSON shapes, kept unexported so the format can evolve freely.
type manifestJSON struct {
	Events []eventJSON `json:"events"`
}

type eventJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Start string `json:"start"` // RFC 3339
	// BBox is optional; when absent, the box is derived from the polygons.
	BBox *bboxJSON `json:"bbox,omitempty"`
	// Polygons are rings of [lat, lon] pairs.
	Polygons [][][2]float64 `json:"polygons"`
	Wave     waveJSON       `json:"wave"`
}

type bboxJSON struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

type waveJSON struct {
	Shape     string      `json:"shape,omitempty"` // "linear" (default) | "circular"
	SpeedMps  float64     `json:"speed_mps"`
	Direction string      `json:"direction,omitempty"` // east | west | north | south
	Epicenter *[2]float64 `json:"epicenter,omitempty"` // [lat, lon], circular only
	Duration  float64     `json:"approx_duration_seconds"`
}

// LoadEventManifest reads a JSON event manifest from r, adds the events to
// the store, and returns a summary of what was loaded. Configuration
// errors (bad timestamps, undersized rings, non-positive speed) fail the
// whole load; an event catalog with a broken entry is a data bug upstream,
// not something to observe around.
func LoadEventManifest(store *kb.EventStore, r io.Reader) (*EventManifest, error) {
	if store == nil {
		return nil, fmt.Errorf("nil event store")
	}

	var doc manifestJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode event manifest: %w", err)
	}

	manifest := &EventManifest{}
	for i, ev := range doc.Events {
		def, err := eventFromJSON(ev)
		if err != nil {
			return nil, fmt.Errorf("event %d (%q): %w", i, ev.ID, err)
		}
		if err := store.AddEvent(def); err != nil {
			return nil, err
		}
		manifest.EventIDs = append(manifest.EventIDs, def.ID)
	}
	return manifest, nil
}

func eventFromJSON(ev eventJSON) (*model.EventDefinition, error) {
	start, err := time.Parse(time.RFC3339, ev.Start)
	if err != nil {
		return nil, fmt.Errorf("parse start time: %w", err)
	}

	polygons := make([]model.Polygon, 0, len(ev.Polygons))
	for i, ring := range ev.Polygons {
		if len(ring) < 3 {
			return nil, fmt.Errorf("polygon %d has %d vertices, need at least 3", i, len(ring))
		}
		positions := make([]model.Position, 0, len(ring))
		for _, pair := range ring {
			positions = append(positions, model.Position{Lat: pair[0], Lon: pair[1]})
		}
		polygons = append(polygons, model.NewPolygon(positions))
	}

	var area *model.Area
	if ev.BBox != nil {
		area = model.NewArea(model.BoundingBox{
			South: ev.BBox.South,
			West:  ev.BBox.West,
			North: ev.BBox.North,
			East:  ev.BBox.East,
		}, polygons)
	} else {
		area = model.AreaFromPolygons(polygons)
	}

	spec, err := waveFromJSON(ev.Wave)
	if err != nil {
		return nil, err
	}

	return &model.EventDefinition{
		ID:        ev.ID,
		Name:      ev.Name,
		Area:      area,
		WaveStart: start,
		Wave:      spec,
	}, nil
}

func waveFromJSON(w waveJSON) (model.WaveSpec, error) {
	spec := model.WaveSpec{
		Speed:          w.SpeedMps,
		ApproxDuration: time.Duration(w.Duration * float64(time.Second)),
	}
	if spec.Speed <= 0 {
		return spec, fmt.Errorf("wave speed must be positive, got %v", w.SpeedMps)
	}

	switch strings.ToLower(w.Shape) {
	case "", "linear":
		spec.Kind = model.WaveLinear
		dir, err := directionFromString(w.Direction)
		if err != nil {
			return spec, err
		}
		spec.Direction = dir
	case "circular":
		spec.Kind = model.WaveCircular
		if w.Epicenter == nil {
			return spec, fmt.Errorf("circular wave requires an epicenter")
		}
		spec.Epicenter = model.Position{Lat: w.Epicenter[0], Lon: w.Epicenter[1]}
	default:
		return spec, fmt.Errorf("unsupported wave shape %q", w.Shape)
	}
	return spec, nil
}

func directionFromString(s string) (model.Direction, error) {
	switch strings.ToLower(s) {
	case "", "east":
		return model.DirectionEast, nil
	case "west":
		return model.DirectionWest, nil
	case "north":
		return model.DirectionNorth, nil
	case "south":
		return model.DirectionSouth, nil
	default:
		return model.DirectionEast, fmt.Errorf("unsupported wave direction %q", s)
	}
}
