package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/nandanugg/geotrack/module/core/domain"
)

type assetPositions interface {
	Get(ctx context.Context, id string) (*domain.Asset, error)
	UpdatePosition(ctx context.Context, id string, pos domain.Coordinate, ts time.Time) error
}

type activeGeofences interface {
	ActiveGeofences(ctx context.Context) ([]domain.Geofence, error)
}

type locationRecorder interface {
	SaveLocation(ctx context.Context, loc *domain.AssetLocation) error
}

type eventNotifier interface {
	Notify(ctx context.Context, events []domain.CrossingEvent)
}

// batchConcurrency bounds how many assets EvaluateBatch works on at once.
const batchConcurrency = 8

// TrackingService is the entry point for location samples.
type TrackingService struct {
	assets    assetPositions
	geofences activeGeofences
	locations locationRecorder
	engine    *Engine
	notifier  eventNotifier
	locks     *AssetLocker
}

func NewTrackingService(assets assetPositions, geofences activeGeofences, locations locationRecorder, engine *Engine, notifier eventNotifier) *TrackingService {
	return &TrackingService{
		assets:    assets,
		geofences: geofences,
		locations: locations,
		engine:    engine,
		notifier:  notifier,
		locks:     NewAssetLocker(),
	}
}

// Evaluate records the sample for assetID and returns the crossings it
// produced. Samples older than the asset's last update are rejected with
// domain.ErrStaleSample. A non-nil evaluation with a non-nil error means some
// geofences failed on storage and the sample can be retried.
func (s *TrackingService) Evaluate(ctx context.Context, assetID string, point domain.Coordinate, ts time.Time) (*domain.Evaluation, error) {
	if err := point.Validate(); err != nil {
		return nil, err
	}
	if ts.IsZero() {
		ts = time.Now()
	}
	ts = ts.UTC()

	// The lock must span the last-event read, the decision and the event
	// write for every geofence. Without it two concurrent samples for the
	// same asset can both see the same last event and record two ENTERs.
	unlock := s.locks.Lock(assetID)
	defer unlock()

	asset, err := s.assets.Get(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("get asset %s: %w", assetID, err)
	}
	if !asset.LastUpdate.IsZero() && ts.Before(asset.LastUpdate) {
		return nil, fmt.Errorf("%w: %s before last update %s", domain.ErrStaleSample,
			ts.Format(time.RFC3339Nano), asset.LastUpdate.UTC().Format(time.RFC3339Nano))
	}

	if err := s.assets.UpdatePosition(ctx, assetID, point, ts); err != nil {
		return nil, fmt.Errorf("update position: %w", err)
	}
	loc := &domain.AssetLocation{AssetID: assetID, Position: point, Timestamp: ts}
	if err := s.locations.SaveLocation(ctx, loc); err != nil {
		log.Error().Err(err).Str("asset_id", assetID).Msg("failed to append location history")
	}

	geofences, err := s.geofences.ActiveGeofences(ctx)
	if err != nil {
		return nil, fmt.Errorf("active geofences: %w", err)
	}

	ev := s.engine.Evaluate(ctx, asset, point, ts, geofences)
	if len(ev.Emitted) > 0 && s.notifier != nil {
		s.notifier.Notify(ctx, ev.Emitted)
	}
	return ev, ev.Err()
}

// BatchResult is the outcome of one sample of a batch, in input order.
type BatchResult struct {
	Sample     domain.LocationSample
	Evaluation *domain.Evaluation
	Err        error
}

// EvaluateBatch evaluates samples of different assets concurrently while
// keeping each asset's samples in the order received.
func (s *TrackingService) EvaluateBatch(ctx context.Context, samples []domain.LocationSample) []BatchResult {
	results := make([]BatchResult, len(samples))

	var order []string
	byAsset := make(map[string][]int)
	for i, smp := range samples {
		results[i].Sample = smp
		if _, ok := byAsset[smp.AssetID]; !ok {
			order = append(order, smp.AssetID)
		}
		byAsset[smp.AssetID] = append(byAsset[smp.AssetID], i)
	}

	var g errgroup.Group
	g.SetLimit(batchConcurrency)
	for _, assetID := range order {
		idx := byAsset[assetID]
		g.Go(func() error {
			for _, i := range idx {
				smp := samples[i]
				results[i].Evaluation, results[i].Err = s.Evaluate(ctx, smp.AssetID, smp.Position, smp.Timestamp)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
