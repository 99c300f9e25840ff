package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nandanugg/geotrack/module/core/domain"
)

type eventSaver interface {
	lastEventReader
	Save(ctx context.Context, e *domain.CrossingEvent) error
}

// Engine evaluates one sample against a set of geofences and records the
// resulting transitions. It does no locking of its own.
type Engine struct {
	tracker *Tracker
	events  eventSaver
}

func NewEngine(events eventSaver) *Engine {
	return &Engine{tracker: NewTracker(events), events: events}
}

// Evaluate runs containment, transition and alert gating for each active
// geofence in order. A failure on one geofence is recorded in the result and
// the remaining geofences are still evaluated.
func (e *Engine) Evaluate(ctx context.Context, asset *domain.Asset, point domain.Coordinate, ts time.Time, geofences []domain.Geofence) *domain.Evaluation {
	ev := &domain.Evaluation{
		AssetID:   asset.ID,
		Timestamp: ts,
		Recorded:  []domain.CrossingEvent{},
		Emitted:   []domain.CrossingEvent{},
	}

	for i := range geofences {
		g := &geofences[i]
		if !g.Active {
			continue
		}

		inside, err := Contains(g, point)
		if err != nil {
			log.Warn().Err(err).Str("geofence_id", g.ID).Str("asset_id", asset.ID).Msg("skipping malformed geofence")
			ev.Skipped = append(ev.Skipped, domain.NewGeofenceFailure(g.ID, err))
			continue
		}

		typ, ok, err := e.tracker.Next(ctx, asset.ID, g.ID, inside)
		if err != nil {
			log.Error().Err(err).Str("geofence_id", g.ID).Str("asset_id", asset.ID).Msg("read crossing state")
			ev.Failed = append(ev.Failed, domain.NewGeofenceFailure(g.ID, err))
			continue
		}
		if !ok {
			continue
		}

		event := domain.CrossingEvent{
			AssetID:    asset.ID,
			GeofenceID: g.ID,
			Type:       typ,
			Position:   point,
			OccurredAt: ts,
			Alerted:    ShouldEmit(g.AlertPolicy, typ),
		}
		if err := e.events.Save(ctx, &event); err != nil {
			log.Error().Err(err).Str("geofence_id", g.ID).Str("asset_id", asset.ID).Msg("save crossing event")
			ev.Failed = append(ev.Failed, domain.NewGeofenceFailure(g.ID, err))
			continue
		}

		ev.Recorded = append(ev.Recorded, event)
		if event.Alerted {
			ev.Emitted = append(ev.Emitted, event)
		}
		log.Info().
			Str("asset_id", asset.ID).
			Str("geofence_id", g.ID).
			Str("geofence", g.Name).
			Str("type", string(typ)).
			Bool("alerted", event.Alerted).
			Msg("geofence crossing")
	}
	return ev
}
