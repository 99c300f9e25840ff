// Package badgerdb keeps assets, geofences and the crossing log in an
// embedded badger database, for deployments without postgres.
package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/nandanugg/geotrack/module/core/domain"
	"github.com/nandanugg/geotrack/module/core/internal/repository/database"
)

const (
	geofencePrefix = "geofence/"
	assetPrefix    = "asset/"
	pairPrefix     = "pair/"
	eventIDPrefix  = "eventid/"
	locationPrefix = "loc/"
	sequenceKey    = "seq/events"
)

type DB struct {
	db  *badger.DB
	seq *badger.Sequence
}

// Open wraps an already opened badger database.
func Open(db *badger.DB) (*DB, error) {
	seq, err := db.GetSequence([]byte(sequenceKey), 100)
	if err != nil {
		return nil, fmt.Errorf("badger sequence: %w", err)
	}
	return &DB{db: db, seq: seq}, nil
}

// Close releases the sequence lease. The badger database itself is closed by
// whoever opened it.
func (d *DB) Close() error {
	return d.seq.Release()
}

func (d *DB) Store() *database.Store {
	return &database.Store{
		Geofences: &GeofenceRepo{d},
		Assets:    &AssetRepo{d},
		Events:    &EventRepo{d},
		Locations: &LocationRepo{d},
		Ping: func(context.Context) error {
			if d.db.IsClosed() {
				return errors.New("badger closed")
			}
			return nil
		},
	}
}

func (d *DB) nextSeq() (int64, error) {
	n, err := d.seq.Next()
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	// badger sequences start at 0; keep 0 meaning "unsaved"
	return int64(n) + 1, nil
}

func put(txn *badger.Txn, key string, value any) error {
	buf, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return txn.Set([]byte(key), buf)
}

func get(txn *badger.Txn, key string, value any) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return msgpack.Unmarshal(val, value)
	})
}

func exists(txn *badger.Txn, key string) (bool, error) {
	_, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// scan decodes every value under prefix in key order and hands it to fn.
func scan[T any](txn *badger.Txn, prefix string, fn func(T) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		var v T
		if err := it.Item().Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &v)
		}); err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}
