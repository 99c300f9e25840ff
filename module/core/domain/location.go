package domain

import (
	"fmt"
	"math"
	"time"
)

// Coordinate is a WGS84 position in degrees.
type Coordinate struct {
	Lat float64 `json:"latitude" yaml:"latitude" msgpack:"lat"`
	Lon float64 `json:"longitude" yaml:"longitude" msgpack:"lon"`
}

func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return fmt.Errorf("%w: latitude and longitude must be numbers", ErrInvalidCoordinate)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidCoordinate)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalidCoordinate)
	}
	return nil
}

// AssetLocation is one entry of an asset's location trail.
type AssetLocation struct {
	AssetID   string     `json:"asset_id" msgpack:"asset_id"`
	Position  Coordinate `json:"position" msgpack:"position"`
	Timestamp time.Time  `json:"timestamp" msgpack:"timestamp"`
}

type HistoryQuery struct {
	AssetID string
	Start   time.Time
	End     time.Time
}

// LocationSample is a single incoming report for an asset.
type LocationSample struct {
	AssetID   string
	Position  Coordinate
	Timestamp time.Time
}
