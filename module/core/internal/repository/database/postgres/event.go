package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nandanugg/geotrack/module/core/domain"
	"github.com/nandanugg/geotrack/module/core/internal/repository/database"
)

var _ database.EventRepository = (*EventRepo)(nil)

const eventColumns = `seq, id, asset_id, geofence_id, event_type, latitude, longitude, occurred_at, alerted, notified`

type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// Save appends e to the log, assigning ID and OccurredAt when unset. Events of
// a pair sharing an occurred_at are ordered by seq. Reusing an ID yields
// domain.ErrDuplicateEvent.
func (r *EventRepo) Save(ctx context.Context, e *domain.CrossingEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	row := r.db.QueryRowContext(ctx,
		`INSERT INTO geofence_events (id, asset_id, geofence_id, event_type, latitude, longitude, occurred_at, alerted, notified) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING seq`,
		e.ID, e.AssetID, e.GeofenceID, string(e.Type), e.Position.Lat, e.Position.Lon, e.OccurredAt, e.Alerted, e.Notified,
	)
	if err := row.Scan(&e.Seq); err != nil {
		return mapError(err)
	}
	return nil
}

// LastEvent returns nil, nil when the pair has no recorded crossing.
func (r *EventRepo) LastEvent(ctx context.Context, assetID, geofenceID string) (*domain.CrossingEvent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM geofence_events WHERE asset_id = $1 AND geofence_id = $2 ORDER BY occurred_at DESC, seq DESC LIMIT 1`,
		assetID, geofenceID,
	)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *EventRepo) List(ctx context.Context, q *domain.EventQuery) ([]domain.CrossingEvent, error) {
	var (
		conditions []string
		args       []any
	)
	add := func(clause string, v any) {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}
	if q.AssetID != "" {
		add("asset_id = $%d", q.AssetID)
	}
	if q.GeofenceID != "" {
		add("geofence_id = $%d", q.GeofenceID)
	}
	if !q.Start.IsZero() {
		add("occurred_at >= $%d", q.Start)
	}
	if !q.End.IsZero() {
		add("occurred_at <= $%d", q.End)
	}

	query := `SELECT ` + eventColumns + ` FROM geofence_events`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY occurred_at ASC, seq ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []domain.CrossingEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *e)
	}
	return results, rows.Err()
}

func (r *EventRepo) CountByType(ctx context.Context, t domain.EventType, start, end time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM geofence_events WHERE event_type = $1`
	args := []any{string(t)}
	if !start.IsZero() {
		args = append(args, start)
		query += fmt.Sprintf(` AND occurred_at >= $%d`, len(args))
	}
	if !end.IsZero() {
		args = append(args, end)
		query += fmt.Sprintf(` AND occurred_at <= $%d`, len(args))
	}

	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func (r *EventRepo) MarkNotified(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE geofence_events SET notified = TRUE WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return expectOneRow(res)
}

func scanEvent(s scanner) (*domain.CrossingEvent, error) {
	var (
		e   domain.CrossingEvent
		typ string
	)
	if err := s.Scan(&e.Seq, &e.ID, &e.AssetID, &e.GeofenceID, &typ, &e.Position.Lat, &e.Position.Lon,
		&e.OccurredAt, &e.Alerted, &e.Notified); err != nil {
		return nil, err
	}
	e.Type = domain.EventType(typ)
	return &e, nil
}
