package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nandanugg/geotrack/module/core/domain"
	"github.com/nandanugg/geotrack/module/core/internal/repository/database"
)

var _ database.GeofenceRepository = (*GeofenceRepo)(nil)

const geofenceColumns = `id, name, description, kind, center_latitude, center_longitude, radius_meters, polygon_coordinates, alert_policy, active, created_at, updated_at`

type GeofenceRepo struct {
	db *sql.DB
}

func NewGeofenceRepo(db *sql.DB) *GeofenceRepo {
	return &GeofenceRepo{db: db}
}

type geofenceRow struct {
	centerLat, centerLon sql.NullFloat64
	radius               sql.NullFloat64
	polygon              sql.NullString
}

func toGeofenceRow(g *domain.Geofence) (geofenceRow, error) {
	var row geofenceRow
	if g.Center != nil {
		row.centerLat = nullFloat(g.Center.Lat, true)
		row.centerLon = nullFloat(g.Center.Lon, true)
	}
	row.radius = nullFloat(g.RadiusMeters, g.RadiusMeters != 0)
	if len(g.Polygon) > 0 {
		s, err := domain.EncodeRing(g.Polygon)
		if err != nil {
			return row, err
		}
		row.polygon = sql.NullString{String: s, Valid: true}
	}
	return row, nil
}

func (r *GeofenceRepo) Create(ctx context.Context, g *domain.Geofence) error {
	row, err := toGeofenceRow(g)
	if err != nil {
		return err
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	g.CreatedAt, g.UpdatedAt = now, now

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO geofences (`+geofenceColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		g.ID, g.Name, g.Description, string(g.Kind), row.centerLat, row.centerLon, row.radius, row.polygon,
		string(g.AlertPolicy), g.Active, g.CreatedAt, g.UpdatedAt,
	)
	return mapError(err)
}

func (r *GeofenceRepo) Update(ctx context.Context, g *domain.Geofence) error {
	row, err := toGeofenceRow(g)
	if err != nil {
		return err
	}
	g.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx,
		`UPDATE geofences SET name = $2, description = $3, kind = $4, center_latitude = $5, center_longitude = $6, radius_meters = $7, polygon_coordinates = $8, alert_policy = $9, active = $10, updated_at = $11 WHERE id = $1`,
		g.ID, g.Name, g.Description, string(g.Kind), row.centerLat, row.centerLon, row.radius, row.polygon,
		string(g.AlertPolicy), g.Active, g.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	return expectOneRow(res)
}

func (r *GeofenceRepo) Get(ctx context.Context, id string) (*domain.Geofence, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+geofenceColumns+` FROM geofences WHERE id = $1`, id)
	g, err := scanGeofence(row)
	if err != nil {
		return nil, mapError(err)
	}
	return g, nil
}

func (r *GeofenceRepo) List(ctx context.Context, activeOnly bool) ([]domain.Geofence, error) {
	query := `SELECT ` + geofenceColumns + ` FROM geofences`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list geofences: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Geofence
	for rows.Next() {
		g, err := scanGeofence(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *g)
	}
	return results, rows.Err()
}

// scanGeofence never fails on unparsable polygon text: the ring is left
// empty so evaluation reports the geofence as malformed and skips it.
func scanGeofence(s scanner) (*domain.Geofence, error) {
	var (
		g      domain.Geofence
		kind   string
		policy string
		row    geofenceRow
	)
	if err := s.Scan(&g.ID, &g.Name, &g.Description, &kind, &row.centerLat, &row.centerLon, &row.radius,
		&row.polygon, &policy, &g.Active, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.Kind = domain.GeofenceKind(kind)
	g.AlertPolicy = domain.AlertPolicy(policy)
	if row.centerLat.Valid && row.centerLon.Valid {
		g.Center = &domain.Coordinate{Lat: row.centerLat.Float64, Lon: row.centerLon.Float64}
	}
	if row.radius.Valid {
		g.RadiusMeters = row.radius.Float64
	}
	if row.polygon.Valid {
		ring, err := domain.DecodeRing(row.polygon.String)
		if err != nil {
			log.Warn().Err(err).Str("geofence_id", g.ID).Msg("stored polygon is unparsable")
		} else {
			g.Polygon = ring
		}
	}
	return &g, nil
}
