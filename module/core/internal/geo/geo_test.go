package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nandanugg/geotrack/module/core/domain"
)

func TestDistanceMeters(t *testing.T) {
	a := domain.Coordinate{Lat: -6.2088, Lon: 106.8456}

	assert.Equal(t, 0.0, DistanceMeters(a, a))

	// roughly 133m due south
	d := DistanceMeters(a, domain.Coordinate{Lat: -6.2100, Lon: 106.8456})
	assert.InDelta(t, 133.4, d, 1)

	// San Francisco to Los Angeles, ~559km
	sf := domain.Coordinate{Lat: 37.7749, Lon: -122.4194}
	la := domain.Coordinate{Lat: 34.0522, Lon: -118.2437}
	assert.InDelta(t, 559_000, DistanceMeters(sf, la), 2_000)
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	pairs := [][2]domain.Coordinate{
		{{Lat: 0, Lon: 0}, {Lat: 10, Lon: 10}},
		{{Lat: 51.5, Lon: -0.12}, {Lat: 40.7, Lon: -74}},
		{{Lat: -33.9, Lon: 151.2}, {Lat: 35.7, Lon: 139.7}},
		{{Lat: 89.9, Lon: 179.9}, {Lat: -89.9, Lon: -179.9}},
	}
	for _, p := range pairs {
		assert.InDelta(t, DistanceMeters(p[0], p[1]), DistanceMeters(p[1], p[0]), 1e-6)
	}
}

func TestDistanceMeters_ProjectedPoints(t *testing.T) {
	origin := domain.Coordinate{Lat: 0, Lon: 0}
	for _, bearing := range []float64{0, 45, 90, 180, 270} {
		p := destination(origin, bearing, 1000)
		assert.InDelta(t, 1000, DistanceMeters(origin, p), 1e-6, "bearing %v", bearing)
	}

	north := destination(origin, 0, 1000)
	assert.Greater(t, north.Lat, 0.0)
	assert.InDelta(t, 0, north.Lon, 1e-12)
}

func TestPointInPolygon(t *testing.T) {
	square := []domain.Coordinate{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 10}, {Lat: 10, Lon: 10}, {Lat: 10, Lon: 0},
	}
	// U shape opening north; the notch spans lon 4..6 above lat 2
	concave := []domain.Coordinate{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 10}, {Lat: 10, Lon: 10}, {Lat: 10, Lon: 6},
		{Lat: 2, Lon: 6}, {Lat: 2, Lon: 4}, {Lat: 10, Lon: 4}, {Lat: 10, Lon: 0},
	}

	tests := []struct {
		name string
		p    domain.Coordinate
		ring []domain.Coordinate
		want bool
	}{
		{"center of square", domain.Coordinate{Lat: 5, Lon: 5}, square, true},
		{"east of square", domain.Coordinate{Lat: 5, Lon: 15}, square, false},
		{"south of square", domain.Coordinate{Lat: -1, Lon: 5}, square, false},
		{"left arm of U", domain.Coordinate{Lat: 8, Lon: 2}, concave, true},
		{"inside notch of U", domain.Coordinate{Lat: 8, Lon: 5}, concave, false},
		{"base of U", domain.Coordinate{Lat: 1, Lon: 5}, concave, true},
		{"two-point ring", domain.Coordinate{Lat: 0, Lon: 0}, square[:2], false},
		{"empty ring", domain.Coordinate{Lat: 0, Lon: 0}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PointInPolygon(tt.p, tt.ring))
		})
	}
}

func TestPointInPolygon_OrientationIndependent(t *testing.T) {
	ccw := []domain.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1, Lon: 0}}
	cw := []domain.Coordinate{ccw[3], ccw[2], ccw[1], ccw[0]}
	p := domain.Coordinate{Lat: 0.5, Lon: 0.5}

	assert.True(t, PointInPolygon(p, ccw))
	assert.True(t, PointInPolygon(p, cw))
}

// destination projects from along the initial bearing (degrees clockwise
// from north) for the given distance on the sphere.
func destination(from domain.Coordinate, bearingDeg, distanceMeters float64) domain.Coordinate {
	delta := distanceMeters / EarthRadiusMeters
	theta := toRad(bearingDeg)
	phi1 := toRad(from.Lat)
	lambda1 := toRad(from.Lon)

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2),
	)

	lon := math.Mod(toDeg(lambda2)+540, 360) - 180
	return domain.Coordinate{Lat: toDeg(phi2), Lon: lon}
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
