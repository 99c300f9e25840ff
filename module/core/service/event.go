package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nandanugg/geotrack/module/core/domain"
	"github.com/nandanugg/geotrack/module/core/internal/repository/database"
)

// EventService answers queries over the crossing log.
type EventService struct {
	repo database.EventRepository
}

func NewEventService(repo database.EventRepository) *EventService {
	return &EventService{repo: repo}
}

func (s *EventService) List(ctx context.Context, q *domain.EventQuery) ([]domain.CrossingEvent, error) {
	if !q.Start.IsZero() && !q.End.IsZero() && q.End.Before(q.Start) {
		return nil, fmt.Errorf("end %s is before start %s", q.End.Format(time.RFC3339), q.Start.Format(time.RFC3339))
	}
	return s.repo.List(ctx, q)
}

func (s *EventService) CountByType(ctx context.Context, t domain.EventType, start, end time.Time) (int64, error) {
	if !t.Valid() {
		return 0, fmt.Errorf("unknown event type %q", t)
	}
	return s.repo.CountByType(ctx, t, start, end)
}

// Stats counts the asset's crossings within [start, end]. Zero bounds are
// open.
func (s *EventService) Stats(ctx context.Context, assetID string, start, end time.Time) (*domain.AssetStats, error) {
	events, err := s.repo.List(ctx, &domain.EventQuery{AssetID: assetID, Start: start, End: end})
	if err != nil {
		return nil, err
	}

	stats := &domain.AssetStats{AssetID: assetID}
	for _, e := range events {
		switch e.Type {
		case domain.EventEnter:
			stats.TotalEntries++
		case domain.EventExit:
			stats.TotalExits++
		}
	}
	stats.TotalEvents = int64(len(events))
	return stats, nil
}

// IsInside reports the side of the boundary the asset was last recorded on.
func (s *EventService) IsInside(ctx context.Context, assetID, geofenceID string) (bool, error) {
	last, err := s.repo.LastEvent(ctx, assetID, geofenceID)
	if err != nil {
		return false, err
	}
	return last != nil && last.Type == domain.EventEnter, nil
}

func (s *EventService) MarkNotified(ctx context.Context, id string) error {
	return s.repo.MarkNotified(ctx, id)
}
