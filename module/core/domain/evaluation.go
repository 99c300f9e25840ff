package domain

import (
	"errors"
	"fmt"
	"time"
)

// GeofenceFailure names a geofence that could not be evaluated for a sample.
type GeofenceFailure struct {
	GeofenceID string `json:"geofence_id"`
	Err        error  `json:"-"`
	Reason     string `json:"reason"`
}

func NewGeofenceFailure(geofenceID string, err error) GeofenceFailure {
	return GeofenceFailure{GeofenceID: geofenceID, Err: err, Reason: err.Error()}
}

// Evaluation is the outcome of one location sample against every active
// geofence.
type Evaluation struct {
	AssetID   string    `json:"asset_id"`
	Timestamp time.Time `json:"timestamp"`
	// Recorded holds every persisted transition, alerted or not.
	Recorded []CrossingEvent `json:"recorded"`
	// Emitted is the subset of Recorded that passed the alert policy.
	Emitted []CrossingEvent   `json:"emitted"`
	Skipped []GeofenceFailure `json:"skipped,omitempty"`
	Failed  []GeofenceFailure `json:"failed,omitempty"`
}

// Err joins the storage failures. Skipped geofences are data-quality issues
// and are not reported here.
func (e *Evaluation) Err() error {
	if len(e.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = fmt.Errorf("geofence %s: %w", f.GeofenceID, f.Err)
	}
	return errors.Join(errs...)
}
