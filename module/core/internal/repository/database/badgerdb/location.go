package badgerdb

import (
	"context"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v3"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/nandanugg/geotrack/module/core/domain"
	"github.com/nandanugg/geotrack/module/core/internal/repository/database"
)

var _ database.LocationRepository = (*LocationRepo)(nil)

type LocationRepo struct {
	d *DB
}

func locationPrefixFor(assetID string) string {
	return locationPrefix + assetID + "/"
}

func (r *LocationRepo) Insert(_ context.Context, loc *domain.AssetLocation) error {
	seq, err := r.d.nextSeq()
	if err != nil {
		return err
	}
	key := fmt.Sprintf("%s%019d/%019d", locationPrefixFor(loc.AssetID), loc.Timestamp.UnixNano(), seq)
	return r.d.db.Update(func(txn *badger.Txn) error {
		return put(txn, key, loc)
	})
}

func (r *LocationRepo) GetLatest(_ context.Context, assetID string) (*domain.AssetLocation, error) {
	var latest *domain.AssetLocation
	err := r.d.db.View(func(txn *badger.Txn) error {
		p := []byte(locationPrefixFor(assetID))
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = p
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(append(slices.Clone(p), 0xff))
		if !it.ValidForPrefix(p) {
			return domain.ErrNotFound
		}
		var loc domain.AssetLocation
		if err := it.Item().Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &loc)
		}); err != nil {
			return err
		}
		latest = &loc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return latest, nil
}

func (r *LocationRepo) GetHistory(_ context.Context, query *domain.HistoryQuery) ([]domain.AssetLocation, error) {
	var results []domain.AssetLocation
	err := r.d.db.View(func(txn *badger.Txn) error {
		return scan(txn, locationPrefixFor(query.AssetID), func(loc domain.AssetLocation) error {
			if loc.Timestamp.Before(query.Start) || loc.Timestamp.After(query.End) {
				return nil
			}
			results = append(results, loc)
			return nil
		})
	})
	return results, err
}
