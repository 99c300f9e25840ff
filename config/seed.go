package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/nandanugg/geotrack/module/core/domain"
)

// Seed is the startup data file: geofences and assets to create when they
// do not exist yet.
type Seed struct {
	Geofences []domain.Geofence `yaml:"geofences"`
	Assets    []domain.Asset    `yaml:"assets"`
}

func LoadSeed(path string) (*Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	for i := range seed.Geofences {
		g := &seed.Geofences[i]
		if g.AlertPolicy == "" {
			g.AlertPolicy = domain.AlertBoth
		}
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("seed geofence %d (%s): %w", i, g.Name, err)
		}
	}
	for i := range seed.Assets {
		if err := seed.Assets[i].Validate(); err != nil {
			return nil, fmt.Errorf("seed asset %d (%s): %w", i, seed.Assets[i].Name, err)
		}
	}
	return &seed, nil
}
