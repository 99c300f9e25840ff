package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandanugg/geotrack/module/core/domain"
)

func seededEvents(t *testing.T) *memEvents {
	t.Helper()
	events := newMemEvents()
	engine := NewEngine(events)
	fences := []domain.Geofence{depotFence, yardFence}
	for i, p := range []domain.Coordinate{depot, farAway, inYard, depot} {
		require.NoError(t, engine.Evaluate(context.Background(), vehicle, p, at(i), fences).Err())
	}
	return events
}

func TestEventStats(t *testing.T) {
	svc := NewEventService(seededEvents(t))

	stats, err := svc.Stats(context.Background(), vehicle.ID, at(0), at(10))
	require.NoError(t, err)
	// depot: ENTER, EXIT, ENTER. yard: ENTER, EXIT.
	assert.Equal(t, &domain.AssetStats{AssetID: vehicle.ID, TotalEntries: 3, TotalExits: 2, TotalEvents: 5}, stats)

	stats, err = svc.Stats(context.Background(), vehicle.ID, at(3), at(3))
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalEvents)
}

func TestEventCountByType(t *testing.T) {
	svc := NewEventService(seededEvents(t))

	n, err := svc.CountByType(context.Background(), domain.EventExit, at(0), at(10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = svc.CountByType(context.Background(), "PASS", at(0), at(10))
	assert.Error(t, err)
}

func TestEventIsInside(t *testing.T) {
	svc := NewEventService(seededEvents(t))

	inside, err := svc.IsInside(context.Background(), vehicle.ID, depotFence.ID)
	require.NoError(t, err)
	assert.True(t, inside)

	inside, err = svc.IsInside(context.Background(), vehicle.ID, yardFence.ID)
	require.NoError(t, err)
	assert.False(t, inside)

	inside, err = svc.IsInside(context.Background(), "nobody", depotFence.ID)
	require.NoError(t, err)
	assert.False(t, inside)
}

func TestEventList_RejectsInvertedRange(t *testing.T) {
	svc := NewEventService(seededEvents(t))

	_, err := svc.List(context.Background(), &domain.EventQuery{Start: at(5), End: at(1)})
	assert.Error(t, err)

	got, err := svc.List(context.Background(), &domain.EventQuery{GeofenceID: yardFence.ID})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
