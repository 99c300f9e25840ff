package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

type GeofenceKind string

const (
	GeofenceCircular  GeofenceKind = "CIRCULAR"
	GeofencePolygonal GeofenceKind = "POLYGONAL"
)

type AlertPolicy string

const (
	AlertEntryOnly AlertPolicy = "ENTRY_ONLY"
	AlertExitOnly  AlertPolicy = "EXIT_ONLY"
	AlertBoth      AlertPolicy = "BOTH"
)

func (p AlertPolicy) Valid() bool {
	switch p {
	case AlertEntryOnly, AlertExitOnly, AlertBoth:
		return true
	}
	return false
}

type Geofence struct {
	ID           string       `json:"id" yaml:"id" msgpack:"id"`
	Name         string       `json:"name" yaml:"name" msgpack:"name"`
	Description  string       `json:"description,omitempty" yaml:"description" msgpack:"description"`
	Kind         GeofenceKind `json:"kind" yaml:"kind" msgpack:"kind"`
	Center       *Coordinate  `json:"center,omitempty" yaml:"center" msgpack:"center"`
	RadiusMeters float64      `json:"radius_meters,omitempty" yaml:"radius_meters" msgpack:"radius_meters"`
	Polygon      []Coordinate `json:"polygon,omitempty" yaml:"polygon" msgpack:"polygon"`
	AlertPolicy  AlertPolicy  `json:"alert_policy" yaml:"alert_policy" msgpack:"alert_policy"`
	Active       bool         `json:"active" yaml:"active" msgpack:"active"`
	CreatedAt    time.Time    `json:"created_at" yaml:"-" msgpack:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" yaml:"-" msgpack:"updated_at"`
}

// Validate rejects configurations that can never be evaluated. It runs on
// create and update; evaluation treats anything that slips past it as a
// data-integrity anomaly instead.
func (g *Geofence) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidGeofence)
	}
	if !g.AlertPolicy.Valid() {
		return fmt.Errorf("%w: unknown alert policy %q", ErrInvalidGeofence, g.AlertPolicy)
	}

	switch g.Kind {
	case GeofenceCircular:
		if g.Center == nil {
			return fmt.Errorf("%w: circular geofence requires center", ErrInvalidGeofence)
		}
		if err := g.Center.Validate(); err != nil {
			return fmt.Errorf("%w: center: %v", ErrInvalidGeofence, err)
		}
		if math.IsNaN(g.RadiusMeters) || g.RadiusMeters <= 0 {
			return fmt.Errorf("%w: radius must be greater than 0", ErrInvalidGeofence)
		}
	case GeofencePolygonal:
		if len(g.Polygon) < 3 {
			return fmt.Errorf("%w: polygon requires at least 3 points", ErrInvalidGeofence)
		}
		for i, c := range g.Polygon {
			if err := c.Validate(); err != nil {
				return fmt.Errorf("%w: polygon[%d]: %v", ErrInvalidGeofence, i, err)
			}
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidGeofence, g.Kind)
	}
	return nil
}

// EncodeRing renders a ring as [[lat,lon],...] for text storage.
func EncodeRing(ring []Coordinate) (string, error) {
	pairs := make([][2]float64, len(ring))
	for i, c := range ring {
		pairs[i] = [2]float64{c.Lat, c.Lon}
	}
	b, err := json.Marshal(pairs)
	if err != nil {
		return "", fmt.Errorf("encode ring: %w", err)
	}
	return string(b), nil
}

func DecodeRing(s string) ([]Coordinate, error) {
	var pairs [][]float64
	if err := json.Unmarshal([]byte(s), &pairs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
	}
	ring := make([]Coordinate, 0, len(pairs))
	for i, p := range pairs {
		if len(p) != 2 {
			return nil, fmt.Errorf("%w: vertex %d has %d values", ErrMalformedGeometry, i, len(p))
		}
		ring = append(ring, Coordinate{Lat: p[0], Lon: p[1]})
	}
	return ring, nil
}
