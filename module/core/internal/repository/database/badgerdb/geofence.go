package badgerdb

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"

	"github.com/nandanugg/geotrack/module/core/domain"
	"github.com/nandanugg/geotrack/module/core/internal/repository/database"
)

var _ database.GeofenceRepository = (*GeofenceRepo)(nil)

type GeofenceRepo struct {
	d *DB
}

func (r *GeofenceRepo) Create(_ context.Context, g *domain.Geofence) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	g.CreatedAt, g.UpdatedAt = now, now
	return r.d.db.Update(func(txn *badger.Txn) error {
		return put(txn, geofencePrefix+g.ID, g)
	})
}

func (r *GeofenceRepo) Update(_ context.Context, g *domain.Geofence) error {
	return r.d.db.Update(func(txn *badger.Txn) error {
		var existing domain.Geofence
		if err := get(txn, geofencePrefix+g.ID, &existing); err != nil {
			return err
		}
		g.CreatedAt = existing.CreatedAt
		g.UpdatedAt = time.Now().UTC()
		return put(txn, geofencePrefix+g.ID, g)
	})
}

func (r *GeofenceRepo) Get(_ context.Context, id string) (*domain.Geofence, error) {
	var g domain.Geofence
	err := r.d.db.View(func(txn *badger.Txn) error {
		return get(txn, geofencePrefix+id, &g)
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GeofenceRepo) List(_ context.Context, activeOnly bool) ([]domain.Geofence, error) {
	var results []domain.Geofence
	err := r.d.db.View(func(txn *badger.Txn) error {
		return scan(txn, geofencePrefix, func(g domain.Geofence) error {
			if activeOnly && !g.Active {
				return nil
			}
			results = append(results, g)
			return nil
		})
	})
	return results, err
}
