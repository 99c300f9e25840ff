package service

import (
	"fmt"
	"math"

	"github.com/nandanugg/geotrack/module/core/domain"
	"github.com/nandanugg/geotrack/module/core/internal/geo"
)

// Contains tests p against g. Circular geofences include their boundary.
// Geometry that could never have passed validation yields
// domain.ErrMalformedGeometry instead of a containment answer.
func Contains(g *domain.Geofence, p domain.Coordinate) (bool, error) {
	switch g.Kind {
	case domain.GeofenceCircular:
		if g.Center == nil || math.IsNaN(g.RadiusMeters) || g.RadiusMeters <= 0 {
			return false, fmt.Errorf("%w: circular geofence needs center and positive radius", domain.ErrMalformedGeometry)
		}
		return geo.DistanceMeters(*g.Center, p) <= g.RadiusMeters+boundaryToleranceMeters, nil
	case domain.GeofencePolygonal:
		if len(g.Polygon) < 3 {
			return false, fmt.Errorf("%w: polygon has %d points", domain.ErrMalformedGeometry, len(g.Polygon))
		}
		return geo.PointInPolygon(p, g.Polygon), nil
	default:
		return false, fmt.Errorf("%w: unknown kind %q", domain.ErrMalformedGeometry, g.Kind)
	}
}

// boundaryToleranceMeters absorbs haversine round-off so a point projected
// exactly radius meters away still counts as inside.
const boundaryToleranceMeters = 1e-6
