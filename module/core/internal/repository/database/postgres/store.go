package postgres

import (
	"database/sql"

	"github.com/nandanugg/geotrack/module/core/internal/repository/database"
)

func NewStore(db *sql.DB) *database.Store {
	return &database.Store{
		Geofences: NewGeofenceRepo(db),
		Assets:    NewAssetRepo(db),
		Events:    NewEventRepo(db),
		Locations: NewLocationRepo(db),
		Ping:      db.PingContext,
	}
}
