package badgerdb

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"

	"github.com/nandanugg/geotrack/module/core/domain"
	"github.com/nandanugg/geotrack/module/core/internal/repository/database"
)

var _ database.AssetRepository = (*AssetRepo)(nil)

type AssetRepo struct {
	d *DB
}

func (r *AssetRepo) Create(_ context.Context, a *domain.Asset) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	return r.d.db.Update(func(txn *badger.Txn) error {
		return put(txn, assetPrefix+a.ID, a)
	})
}

// Update changes descriptive fields only; position is owned by UpdatePosition.
func (r *AssetRepo) Update(_ context.Context, a *domain.Asset) error {
	return r.d.db.Update(func(txn *badger.Txn) error {
		var existing domain.Asset
		if err := get(txn, assetPrefix+a.ID, &existing); err != nil {
			return err
		}
		existing.Name = a.Name
		existing.Type = a.Type
		existing.Description = a.Description
		existing.Active = a.Active
		existing.UpdatedAt = time.Now().UTC()
		*a = existing
		return put(txn, assetPrefix+a.ID, &existing)
	})
}

func (r *AssetRepo) Get(_ context.Context, id string) (*domain.Asset, error) {
	var a domain.Asset
	err := r.d.db.View(func(txn *badger.Txn) error {
		return get(txn, assetPrefix+id, &a)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssetRepo) List(_ context.Context, activeOnly bool) ([]domain.Asset, error) {
	var results []domain.Asset
	err := r.d.db.View(func(txn *badger.Txn) error {
		return scan(txn, assetPrefix, func(a domain.Asset) error {
			if activeOnly && !a.Active {
				return nil
			}
			results = append(results, a)
			return nil
		})
	})
	return results, err
}

func (r *AssetRepo) UpdatePosition(_ context.Context, id string, pos domain.Coordinate, ts time.Time) error {
	return r.d.db.Update(func(txn *badger.Txn) error {
		var a domain.Asset
		if err := get(txn, assetPrefix+id, &a); err != nil {
			return err
		}
		a.Position = &pos
		a.LastUpdate = ts
		a.UpdatedAt = time.Now().UTC()
		return put(txn, assetPrefix+id, &a)
	})
}
