package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nandanugg/geotrack/module/core/domain"
	"github.com/nandanugg/geotrack/module/core/internal/repository/database"
)

type GeofenceService struct {
	repo database.GeofenceRepository
}

func NewGeofenceService(repo database.GeofenceRepository) *GeofenceService {
	return &GeofenceService{repo: repo}
}

// Create validates g, assigns an id when missing and stores it as active.
func (s *GeofenceService) Create(ctx context.Context, g *domain.Geofence) error {
	if g.AlertPolicy == "" {
		g.AlertPolicy = domain.AlertBoth
	}
	if err := g.Validate(); err != nil {
		return err
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	g.Active = true
	g.CreatedAt = now
	g.UpdatedAt = now
	return s.repo.Create(ctx, g)
}

// Update replaces the definition of an existing geofence. Its id, creation
// time and active flag are kept.
func (s *GeofenceService) Update(ctx context.Context, id string, g *domain.Geofence) (*domain.Geofence, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.AlertPolicy == "" {
		g.AlertPolicy = current.AlertPolicy
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	g.ID = current.ID
	g.Active = current.Active
	g.CreatedAt = current.CreatedAt
	g.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GeofenceService) Get(ctx context.Context, id string) (*domain.Geofence, error) {
	return s.repo.Get(ctx, id)
}

func (s *GeofenceService) List(ctx context.Context, activeOnly bool) ([]domain.Geofence, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *GeofenceService) ActiveGeofences(ctx context.Context) ([]domain.Geofence, error) {
	return s.repo.List(ctx, true)
}

// Deactivate soft-deletes a geofence. Its events are kept.
func (s *GeofenceService) Deactivate(ctx context.Context, id string) error {
	g, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !g.Active {
		return nil
	}
	g.Active = false
	g.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, g)
}
