package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/nandanugg/geotrack/module/core/domain"
	"github.com/nandanugg/geotrack/module/core/internal/geo"
)

// memEvents is an in-memory crossing log with the same ordering rules as the
// real stores: by OccurredAt, then by Seq.
type memEvents struct {
	mu      sync.Mutex
	seq     int64
	events  []domain.CrossingEvent
	saveErr map[string]error
	lastErr map[string]error
}

func newMemEvents() *memEvents {
	return &memEvents{saveErr: map[string]error{}, lastErr: map[string]error{}}
}

func (m *memEvents) Save(_ context.Context, e *domain.CrossingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.saveErr[e.GeofenceID]; err != nil {
		return err
	}
	for _, x := range m.events {
		if e.ID != "" && x.ID == e.ID {
			return domain.ErrDuplicateEvent
		}
	}
	m.seq++
	e.Seq = m.seq
	if e.ID == "" {
		e.ID = fmt.Sprintf("evt-%d", m.seq)
	}
	m.events = append(m.events, *e)
	return nil
}

func (m *memEvents) LastEvent(_ context.Context, assetID, geofenceID string) (*domain.CrossingEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.lastErr[geofenceID]; err != nil {
		return nil, err
	}
	var last *domain.CrossingEvent
	for i := range m.events {
		e := &m.events[i]
		if e.AssetID != assetID || e.GeofenceID != geofenceID {
			continue
		}
		if last == nil || e.OccurredAt.After(last.OccurredAt) ||
			(e.OccurredAt.Equal(last.OccurredAt) && e.Seq > last.Seq) {
			last = e
		}
	}
	if last == nil {
		return nil, nil
	}
	cp := *last
	return &cp, nil
}

func (m *memEvents) List(_ context.Context, q *domain.EventQuery) ([]domain.CrossingEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CrossingEvent
	for _, e := range m.events {
		if q.AssetID != "" && e.AssetID != q.AssetID {
			continue
		}
		if q.GeofenceID != "" && e.GeofenceID != q.GeofenceID {
			continue
		}
		if !q.Start.IsZero() && e.OccurredAt.Before(q.Start) {
			continue
		}
		if !q.End.IsZero() && e.OccurredAt.After(q.End) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *memEvents) CountByType(_ context.Context, t domain.EventType, start, end time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, e := range m.events {
		if e.Type != t {
			continue
		}
		if !start.IsZero() && e.OccurredAt.Before(start) {
			continue
		}
		if !end.IsZero() && e.OccurredAt.After(end) {
			continue
		}
		n++
	}
	return n, nil
}

func (m *memEvents) MarkNotified(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.events {
		if m.events[i].ID == id {
			m.events[i].Notified = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memEvents) types(assetID, geofenceID string) []domain.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.EventType
	for _, e := range m.events {
		if e.AssetID == assetID && e.GeofenceID == geofenceID {
			out = append(out, e.Type)
		}
	}
	return out
}

type mockAssets struct {
	getFn            func(ctx context.Context, id string) (*domain.Asset, error)
	updatePositionFn func(ctx context.Context, id string, pos domain.Coordinate, ts time.Time) error
}

func (m *mockAssets) Get(ctx context.Context, id string) (*domain.Asset, error) {
	return m.getFn(ctx, id)
}

func (m *mockAssets) UpdatePosition(ctx context.Context, id string, pos domain.Coordinate, ts time.Time) error {
	return m.updatePositionFn(ctx, id, pos, ts)
}

// memAssets keeps assets with their last update so stale detection can be
// exercised across calls.
type memAssets struct {
	mu     sync.Mutex
	assets map[string]*domain.Asset
}

func newMemAssets(ids ...string) *memAssets {
	m := &memAssets{assets: map[string]*domain.Asset{}}
	for _, id := range ids {
		m.assets[id] = &domain.Asset{ID: id, Name: id, Type: domain.AssetVehicle, Active: true}
	}
	return m
}

func (m *memAssets) Get(_ context.Context, id string) (*domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAssets) UpdatePosition(_ context.Context, id string, pos domain.Coordinate, ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Position = &pos
	a.LastUpdate = ts
	return nil
}

type staticGeofences []domain.Geofence

func (s staticGeofences) ActiveGeofences(context.Context) ([]domain.Geofence, error) {
	out := make([]domain.Geofence, len(s))
	copy(out, s)
	return out, nil
}

type nopLocations struct{}

func (nopLocations) SaveLocation(context.Context, *domain.AssetLocation) error { return nil }

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.CrossingEvent
}

func (r *recordingNotifier) Notify(_ context.Context, events []domain.CrossingEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

var (
	depot = domain.Coordinate{Lat: 37.7749, Lon: -122.4194}

	depotFence = domain.Geofence{
		ID:           "gf-depot",
		Name:         "Depot",
		Kind:         domain.GeofenceCircular,
		Center:       &depot,
		RadiusMeters: 1000,
		AlertPolicy:  domain.AlertBoth,
		Active:       true,
	}

	yardFence = domain.Geofence{
		ID:   "gf-yard",
		Name: "Yard",
		Kind: domain.GeofencePolygonal,
		Polygon: []domain.Coordinate{
			{Lat: 37.0, Lon: -122.0},
			{Lat: 37.0, Lon: -121.9},
			{Lat: 37.1, Lon: -121.9},
			{Lat: 37.1, Lon: -122.0},
		},
		AlertPolicy: domain.AlertBoth,
		Active:      true,
	}

	farAway = domain.Coordinate{Lat: 40.0, Lon: -100.0}
	inYard  = domain.Coordinate{Lat: 37.05, Lon: -121.95}
)

func withPolicy(g domain.Geofence, p domain.AlertPolicy) domain.Geofence {
	g.AlertPolicy = p
	return g
}

func at(minute int) time.Time {
	return time.Date(2024, 5, 6, 8, minute, 0, 0, time.UTC)
}

// northOf moves c due north by meters along its meridian.
func northOf(c domain.Coordinate, meters float64) domain.Coordinate {
	return domain.Coordinate{Lat: c.Lat + meters/geo.EarthRadiusMeters*180/math.Pi, Lon: c.Lon}
}
