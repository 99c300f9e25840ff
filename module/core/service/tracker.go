package service

import (
	"context"
	"fmt"

	"github.com/nandanugg/geotrack/module/core/domain"
)

// Decide turns a containment sample into at most one transition given the
// type of the pair's last recorded event (nil when there is none). Only a
// change of side produces an event, so recorded events alternate.
func Decide(last *domain.EventType, inside bool) (domain.EventType, bool) {
	switch {
	case last == nil:
		if inside {
			return domain.EventEnter, true
		}
	case *last == domain.EventEnter:
		if !inside {
			return domain.EventExit, true
		}
	case *last == domain.EventExit:
		if inside {
			return domain.EventEnter, true
		}
	}
	return "", false
}

type lastEventReader interface {
	LastEvent(ctx context.Context, assetID, geofenceID string) (*domain.CrossingEvent, error)
}

// Tracker reads the last event of a pair and applies Decide. It never
// writes; callers must hold the asset's lock from this read until the
// resulting event is saved.
type Tracker struct {
	events lastEventReader
}

func NewTracker(events lastEventReader) *Tracker {
	return &Tracker{events: events}
}

func (t *Tracker) Next(ctx context.Context, assetID, geofenceID string, inside bool) (domain.EventType, bool, error) {
	last, err := t.events.LastEvent(ctx, assetID, geofenceID)
	if err != nil {
		return "", false, fmt.Errorf("last event: %w", err)
	}

	var lastType *domain.EventType
	if last != nil {
		lastType = &last.Type
	}
	typ, ok := Decide(lastType, inside)
	return typ, ok, nil
}
