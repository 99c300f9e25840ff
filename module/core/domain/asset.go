package domain

import (
	"fmt"
	"time"
)

type AssetType string

const (
	AssetVehicle AssetType = "VEHICLE"
	AssetPerson  AssetType = "PERSON"
	AssetDevice  AssetType = "DEVICE"
	AssetPackage AssetType = "PACKAGE"
)

func (t AssetType) Valid() bool {
	switch t {
	case AssetVehicle, AssetPerson, AssetDevice, AssetPackage:
		return true
	}
	return false
}

type Asset struct {
	ID          string      `json:"id" yaml:"id" msgpack:"id"`
	Name        string      `json:"name" yaml:"name" msgpack:"name"`
	Type        AssetType   `json:"type" yaml:"type" msgpack:"type"`
	Description string      `json:"description,omitempty" yaml:"description" msgpack:"description"`
	Position    *Coordinate `json:"position,omitempty" yaml:"-" msgpack:"position"`
	LastUpdate  time.Time   `json:"last_update,omitempty" yaml:"-" msgpack:"last_update"`
	Active      bool        `json:"active" yaml:"active" msgpack:"active"`
	CreatedAt   time.Time   `json:"created_at" yaml:"-" msgpack:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" yaml:"-" msgpack:"updated_at"`
}

func (a *Asset) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidAsset)
	}
	if !a.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAsset, a.Type)
	}
	return nil
}
