package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrInvalidGeofence   = errors.New("invalid geofence")
	ErrInvalidAsset      = errors.New("invalid asset")
	ErrMalformedGeometry = errors.New("malformed geofence geometry")
	ErrStaleSample       = errors.New("location sample older than last accepted update")
	ErrDuplicateEvent    = errors.New("crossing event already recorded")
)
