package postgres

import (
	"context"
	"database/sql"

	"github.com/nandanugg/geotrack/module/core/domain"
	"github.com/nandanugg/geotrack/module/core/internal/repository/database"
)

var _ database.LocationRepository = (*LocationRepo)(nil)

type LocationRepo struct {
	db *sql.DB
}

func NewLocationRepo(db *sql.DB) *LocationRepo {
	return &LocationRepo{db: db}
}

func (r *LocationRepo) Insert(ctx context.Context, loc *domain.AssetLocation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO asset_locations (asset_id, latitude, longitude, timestamp) VALUES ($1, $2, $3, $4)`,
		loc.AssetID, loc.Position.Lat, loc.Position.Lon, loc.Timestamp,
	)
	return mapError(err)
}

func (r *LocationRepo) GetLatest(ctx context.Context, assetID string) (*domain.AssetLocation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT asset_id, latitude, longitude, timestamp FROM asset_locations WHERE asset_id = $1 ORDER BY timestamp DESC LIMIT 1`,
		assetID,
	)

	var loc domain.AssetLocation
	if err := row.Scan(&loc.AssetID, &loc.Position.Lat, &loc.Position.Lon, &loc.Timestamp); err != nil {
		return nil, mapError(err)
	}
	return &loc, nil
}

func (r *LocationRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.AssetLocation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT asset_id, latitude, longitude, timestamp FROM asset_locations WHERE asset_id = $1 AND timestamp >= $2 AND timestamp <= $3 ORDER BY timestamp ASC`,
		query.AssetID, query.Start, query.End,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.AssetLocation
	for rows.Next() {
		var loc domain.AssetLocation
		if err := rows.Scan(&loc.AssetID, &loc.Position.Lat, &loc.Position.Lon, &loc.Timestamp); err != nil {
			return nil, err
		}
		results = append(results, loc)
	}
	return results, rows.Err()
}
