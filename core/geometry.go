package core

import (
	"math"

	"github.com/drwave-www/waveengine/model"
)

// EarthRadiusMeters is the mean Earth radius used for all ground-distance
// calculations in the wave engine.
const EarthRadiusMeters = 6371000.0

const degToRad = math.Pi / 180.0

// LongitudeDistance returns the east-west ground distance in metres between
// two longitudes, measured along the parallel at the given latitude. Degrees
// of longitude shrink with the cosine of the latitude. The shorter arc is
// used when the raw difference exceeds 180 degrees.
func LongitudeDistance(lonA, lonB, lat float64) float64 {
	d := math.Abs(lonB - lonA)
	if d > 180 {
		d = 360 - d
	}
	return longitudeSpanMeters(d, lat)
}

// longitudeSpanMeters converts a span of longitude degrees at a latitude
// into metres. Used directly for bounding-box widths, which can exceed
// 180 degrees on a wrapping box.
func longitudeSpanMeters(spanDeg, lat float64) float64 {
	return spanDeg * degToRad * EarthRadiusMeters * math.Cos(lat*degToRad)
}

// latitudeSpanMeters converts a span of latitude degrees into metres.
// Degrees of latitude do not shrink with position.
func latitudeSpanMeters(spanDeg float64) float64 {
	return math.Abs(spanDeg) * degToRad * EarthRadiusMeters
}

// GreatCircleDistance returns the haversine distance in metres between two
// coordinates.
func GreatCircleDistance(a, b model.Position) float64 {
	latA := a.Lat * degToRad
	latB := b.Lat * degToRad
	dLat := (b.Lat - a.Lat) * degToRad
	dLon := (b.Lon - a.Lon) * degToRad

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(latA)*math.Cos(latB)*sinLon*sinLon
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}
