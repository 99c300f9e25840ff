package database

import (
	"context"
	"time"

	"github.com/nandanugg/geotrack/module/core/domain"
)

// Implementations return domain.ErrNotFound for unknown ids.

type GeofenceRepository interface {
	Create(ctx context.Context, g *domain.Geofence) error
	Update(ctx context.Context, g *domain.Geofence) error
	Get(ctx context.Context, id string) (*domain.Geofence, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Geofence, error)
}

type AssetRepository interface {
	Create(ctx context.Context, a *domain.Asset) error
	Update(ctx context.Context, a *domain.Asset) error
	Get(ctx context.Context, id string) (*domain.Asset, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Asset, error)
	UpdatePosition(ctx context.Context, id string, pos domain.Coordinate, ts time.Time) error
}

// EventRepository is the append-only crossing log. LastEvent must reflect
// the most recently committed event for the pair, or the alternation of
// ENTER and EXIT can no longer be guaranteed.
type EventRepository interface {
	Save(ctx context.Context, e *domain.CrossingEvent) error
	LastEvent(ctx context.Context, assetID, geofenceID string) (*domain.CrossingEvent, error)
	List(ctx context.Context, q *domain.EventQuery) ([]domain.CrossingEvent, error)
	CountByType(ctx context.Context, t domain.EventType, start, end time.Time) (int64, error)
	MarkNotified(ctx context.Context, id string) error
}

type LocationRepository interface {
	Insert(ctx context.Context, loc *domain.AssetLocation) error
	GetLatest(ctx context.Context, assetID string) (*domain.AssetLocation, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.AssetLocation, error)
}

// Store bundles the repositories of one storage backend.
type Store struct {
	Geofences GeofenceRepository
	Assets    AssetRepository
	Events    EventRepository
	Locations LocationRepository
	Ping      func(ctx context.Context) error
}
