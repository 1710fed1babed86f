package badger_blobs

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/horockey/cardshelf/internal/model"
	"github.com/horockey/cardshelf/internal/repository/blobs"
	"github.com/prometheus/client_golang/prometheus"
)

var _ blobs.Repository = &badgerBlobs{}

type badgerBlobs struct {
	db      *badger.DB
	metrics *metrics
}

// Open opens badger db in dir and wraps it into blobs repo.
// Closing the repo closes the db.
func Open(dir string) (*badgerBlobs, error) {
	db, err := badger.Open(badger.DefaultOptions(dir))
	if err != nil {
		return nil, fmt.Errorf("opening badger db: %w", err)
	}
	return New(db), nil
}

func New(db *badger.DB) *badgerBlobs {
	return &badgerBlobs{
		db:      db,
		metrics: newMetrics(db),
	}
}

func (repo *badgerBlobs) Metrics() []prometheus.Collector {
	return repo.metrics.list()
}

func (repo *badgerBlobs) Get(key string) (res model.Blob, resErr error) {
	defer func(ts time.Time) {
		repo.metrics.observe(ts, resErr)
	}(time.Now())

	if err := repo.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return model.KeyNotFoundError{Key: key}
			}
			return fmt.Errorf("getting item: %w", err)
		}

		if err := item.Value(func(val []byte) error {
			if err := gob.
				NewDecoder(bytes.NewBuffer(val)).
				Decode(&res); err != nil {
				return fmt.Errorf("decoding gob: %w", err)
			}
			return nil
		}); err != nil {
			return fmt.Errorf("getting value: %w", err)
		}

		return nil
	}); err != nil {
		return model.Blob{}, fmt.Errorf("reading from db: %w", err)
	}

	repo.metrics.keyHitsCnt.Inc()
	return res, nil
}

func (repo *badgerBlobs) Put(key string, value []byte) (resErr error) {
	defer func(ts time.Time) {
		repo.metrics.observe(ts, resErr)
	}(time.Now())

	buf := bytes.NewBuffer(nil)
	if err := gob.
		NewEncoder(buf).
		Encode(model.Blob{
			Key:      key,
			Value:    value,
			Modified: time.Now(),
		}); err != nil {
		return fmt.Errorf("encoding gob: %w", err)
	}

	if err := repo.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(key), buf.Bytes()); err != nil {
			return fmt.Errorf("setting item to db: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("performing upd txn: %w", err)
	}

	return nil
}

func (repo *badgerBlobs) Remove(key string) (resErr error) {
	defer func(ts time.Time) {
		repo.metrics.observe(ts, resErr)
	}(time.Now())

	if err := repo.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(key)); err != nil {
			return fmt.Errorf("deleting item: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("performing del txn: %w", err)
	}

	return nil
}

func (repo *badgerBlobs) Close() error {
	if err := repo.db.Close(); err != nil {
		return fmt.Errorf("closing badger db: %w", err)
	}
	return nil
}
