package badgerdb

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/nandanugg/geotrack/module/core/domain"
	"github.com/nandanugg/geotrack/module/core/internal/repository/database"
)

var _ database.EventRepository = (*EventRepo)(nil)

// Events live under pair/<asset>/<geofence>/<unix nanos>/<seq>, so key order
// within a pair is timestamp order with insertion as the tie-break.
type EventRepo struct {
	d *DB
}

func pairPrefixFor(assetID, geofenceID string) string {
	return fmt.Sprintf("%s%s/%s/", pairPrefix, assetID, geofenceID)
}

// eventKey sorts a pair's events by occurred_at, then by seq.
func eventKey(e *domain.CrossingEvent) string {
	return fmt.Sprintf("%s%019d/%019d", pairPrefixFor(e.AssetID, e.GeofenceID), e.OccurredAt.UnixNano(), e.Seq)
}

func (r *EventRepo) Save(_ context.Context, e *domain.CrossingEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	seq, err := r.d.nextSeq()
	if err != nil {
		return err
	}

	return r.d.db.Update(func(txn *badger.Txn) error {
		for _, key := range []string{assetPrefix + e.AssetID, geofencePrefix + e.GeofenceID} {
			ok, err := exists(txn, key)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrNotFound, key)
			}
		}

		ok, err := exists(txn, eventIDPrefix+e.ID)
		if err != nil {
			return err
		}
		if ok {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateEvent, e.ID)
		}

		e.Seq = seq
		key := eventKey(e)
		if err := put(txn, key, e); err != nil {
			return err
		}
		return txn.Set([]byte(eventIDPrefix+e.ID), []byte(key))
	})
}

// LastEvent returns nil, nil when the pair has no recorded crossing.
func (r *EventRepo) LastEvent(_ context.Context, assetID, geofenceID string) (*domain.CrossingEvent, error) {
	var last *domain.CrossingEvent
	err := r.d.db.View(func(txn *badger.Txn) error {
		p := []byte(pairPrefixFor(assetID, geofenceID))
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = p
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(append(slices.Clone(p), 0xff))
		if !it.ValidForPrefix(p) {
			return nil
		}
		var e domain.CrossingEvent
		if err := it.Item().Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &e)
		}); err != nil {
			return err
		}
		last = &e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return last, nil
}

func (r *EventRepo) List(_ context.Context, q *domain.EventQuery) ([]domain.CrossingEvent, error) {
	prefix := pairPrefix
	if q.AssetID != "" {
		prefix += q.AssetID + "/"
		if q.GeofenceID != "" {
			prefix += q.GeofenceID + "/"
		}
	}

	var results []domain.CrossingEvent
	err := r.d.db.View(func(txn *badger.Txn) error {
		return scan(txn, prefix, func(e domain.CrossingEvent) error {
			if q.GeofenceID != "" && e.GeofenceID != q.GeofenceID {
				return nil
			}
			if !q.Start.IsZero() && e.OccurredAt.Before(q.Start) {
				return nil
			}
			if !q.End.IsZero() && e.OccurredAt.After(q.End) {
				return nil
			}
			results = append(results, e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b domain.CrossingEvent) int {
		if c := a.OccurredAt.Compare(b.OccurredAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
	return results, nil
}

func (r *EventRepo) CountByType(ctx context.Context, t domain.EventType, start, end time.Time) (int64, error) {
	events, err := r.List(ctx, &domain.EventQuery{Start: start, End: end})
	if err != nil {
		return 0, err
	}
	var n int64
	for _, e := range events {
		if e.Type == t {
			n++
		}
	}
	return n, nil
}

func (r *EventRepo) MarkNotified(_ context.Context, id string) error {
	return r.d.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(eventIDPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		var e domain.CrossingEvent
		if err := get(txn, string(key), &e); err != nil {
			return err
		}
		e.Notified = true
		return put(txn, string(key), &e)
	})
}
