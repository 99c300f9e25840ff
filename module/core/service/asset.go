package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nandanugg/geotrack/module/core/domain"
	"github.com/nandanugg/geotrack/module/core/internal/repository/database"
)

type AssetService struct {
	repo database.AssetRepository
}

func NewAssetService(repo database.AssetRepository) *AssetService {
	return &AssetService{repo: repo}
}

func (s *AssetService) Create(ctx context.Context, a *domain.Asset) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.Active = true
	a.Position = nil
	a.LastUpdate = time.Time{}
	a.CreatedAt = now
	a.UpdatedAt = now
	return s.repo.Create(ctx, a)
}

// Update changes the descriptive fields of an asset. Position is only ever
// written by location samples.
func (s *AssetService) Update(ctx context.Context, id string, a *domain.Asset) (*domain.Asset, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	current.Name = a.Name
	current.Type = a.Type
	current.Description = a.Description
	current.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *AssetService) Get(ctx context.Context, id string) (*domain.Asset, error) {
	return s.repo.Get(ctx, id)
}

func (s *AssetService) List(ctx context.Context, activeOnly bool) ([]domain.Asset, error) {
	return s.repo.List(ctx, activeOnly)
}

// Deactivate soft-deletes an asset. Location samples are still accepted for
// it so its crossing history stays consistent.
func (s *AssetService) Deactivate(ctx context.Context, id string) error {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !a.Active {
		return nil
	}
	a.Active = false
	a.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, a)
}
