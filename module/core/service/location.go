package service

import (
	"context"

	"github.com/nandanugg/geotrack/module/core/domain"
	"github.com/nandanugg/geotrack/module/core/internal/repository/database"
)

type LocationService struct {
	repo database.LocationRepository
}

func NewLocationService(repo database.LocationRepository) *LocationService {
	return &LocationService{repo: repo}
}

func (s *LocationService) SaveLocation(ctx context.Context, loc *domain.AssetLocation) error {
	return s.repo.Insert(ctx, loc)
}

func (s *LocationService) GetLatest(ctx context.Context, assetID string) (*domain.AssetLocation, error) {
	return s.repo.GetLatest(ctx, assetID)
}

func (s *LocationService) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.AssetLocation, error) {
	return s.repo.GetHistory(ctx, query)
}
