// Package geo holds the spherical distance and containment primitives used
// by geofence evaluation.
package geo

import (
	"math"

	"github.com/nandanugg/geotrack/module/core/domain"
)

const EarthRadiusMeters = 6371000

// DistanceMeters returns the great-circle distance between a and b using the
// haversine formula.
func DistanceMeters(a, b domain.Coordinate) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// PointInPolygon reports whether p lies inside ring using even-odd ray
// casting, with longitude as x and latitude as y. The ring is closed
// implicitly. Rings with fewer than 3 vertices contain nothing.
//
// Points exactly on an edge or vertex may land on either side; callers must
// not rely on on-boundary results.
func PointInPolygon(p domain.Coordinate, ring []domain.Coordinate) bool {
	n := len(ring)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		yi, xi := ring[i].Lat, ring[i].Lon
		yj, xj := ring[j].Lat, ring[j].Lon
		if (yi > p.Lat) != (yj > p.Lat) &&
			p.Lon < (xj-xi)*(p.Lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
