package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/nandanugg/geotrack/module/core/domain"
	"github.com/nandanugg/geotrack/module/core/internal/repository/database"
)

var _ database.AssetRepository = (*AssetRepo)(nil)

const assetColumns = `id, name, type, description, current_latitude, current_longitude, last_update, active, created_at, updated_at`

type AssetRepo struct {
	db *sql.DB
}

func NewAssetRepo(db *sql.DB) *AssetRepo {
	return &AssetRepo{db: db}
}

func (r *AssetRepo) Create(ctx context.Context, a *domain.Asset) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO assets (id, name, type, description, active, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Name, string(a.Type), a.Description, a.Active, a.CreatedAt, a.UpdatedAt,
	)
	return mapError(err)
}

func (r *AssetRepo) Update(ctx context.Context, a *domain.Asset) error {
	a.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE assets SET name = $2, type = $3, description = $4, active = $5, updated_at = $6 WHERE id = $1`,
		a.ID, a.Name, string(a.Type), a.Description, a.Active, a.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	return expectOneRow(res)
}

func (r *AssetRepo) Get(ctx context.Context, id string) (*domain.Asset, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)
	a, err := scanAsset(row)
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (r *AssetRepo) List(ctx context.Context, activeOnly bool) ([]domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *a)
	}
	return results, rows.Err()
}

func (r *AssetRepo) UpdatePosition(ctx context.Context, id string, pos domain.Coordinate, ts time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE assets SET current_latitude = $2, current_longitude = $3, last_update = $4, updated_at = $5 WHERE id = $1`,
		id, pos.Lat, pos.Lon, ts, time.Now().UTC(),
	)
	if err != nil {
		return mapError(err)
	}
	return expectOneRow(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(s scanner) (*domain.Asset, error) {
	var (
		a          domain.Asset
		typ        string
		lat, lon   sql.NullFloat64
		lastUpdate sql.NullTime
	)
	if err := s.Scan(&a.ID, &a.Name, &typ, &a.Description, &lat, &lon, &lastUpdate, &a.Active, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Type = domain.AssetType(typ)
	if lat.Valid && lon.Valid {
		a.Position = &domain.Coordinate{Lat: lat.Float64, Lon: lon.Float64}
	}
	if lastUpdate.Valid {
		a.LastUpdate = lastUpdate.Time
	}
	return &a, nil
}
