package domain

import "time"

type EventType string

const (
	EventEnter EventType = "ENTER"
	EventExit  EventType = "EXIT"
)

func (t EventType) Valid() bool {
	return t == EventEnter || t == EventExit
}

// CrossingEvent records a single boundary crossing. Events are append-only;
// only Notified changes after the event is saved.
type CrossingEvent struct {
	ID         string     `json:"id" msgpack:"id"`
	Seq        int64      `json:"-" msgpack:"seq"`
	AssetID    string     `json:"asset_id" msgpack:"asset_id"`
	GeofenceID string     `json:"geofence_id" msgpack:"geofence_id"`
	Type       EventType  `json:"type" msgpack:"type"`
	Position   Coordinate `json:"position" msgpack:"position"`
	OccurredAt time.Time  `json:"occurred_at" msgpack:"occurred_at"`
	// Alerted is false when the alert policy suppressed the crossing. The
	// transition is still recorded so later decisions see it.
	Alerted  bool `json:"alerted" msgpack:"alerted"`
	Notified bool `json:"notified" msgpack:"notified"`
}

type EventQuery struct {
	AssetID    string
	GeofenceID string
	Start      time.Time
	End        time.Time
}

type AssetStats struct {
	AssetID      string `json:"asset_id"`
	TotalEntries int64  `json:"total_entries"`
	TotalExits   int64  `json:"total_exits"`
	TotalEvents  int64  `json:"total_events"`
}
