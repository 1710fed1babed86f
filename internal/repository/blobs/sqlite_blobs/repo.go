package sqlite_blobs

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/horockey/cardshelf/internal/model"
	"github.com/horockey/cardshelf/internal/repository/blobs"
	"github.com/prometheus/client_golang/prometheus"
	_ "modernc.org/sqlite"
)

var _ blobs.Repository = &sqliteBlobs{}

const schema = `CREATE TABLE IF NOT EXISTS blobs (
	key      TEXT PRIMARY KEY,
	value    BLOB,
	modified INTEGER NOT NULL
)`

type sqliteBlobs struct {
	db      *sql.DB
	metrics *metrics
}

func Open(path string) (*sqliteBlobs, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("got empty sqlite path")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &sqliteBlobs{
		db:      db,
		metrics: newMetrics(),
	}, nil
}

func (repo *sqliteBlobs) Metrics() []prometheus.Collector {
	return repo.metrics.list()
}

func (repo *sqliteBlobs) Get(key string) (res model.Blob, resErr error) {
	defer func(ts time.Time) {
		repo.metrics.observe(ts, resErr)
	}(time.Now())

	var modified int64
	res.Key = key

	err := repo.db.
		QueryRow(`SELECT value, modified FROM blobs WHERE key = ?`, key).
		Scan(&res.Value, &modified)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return model.Blob{}, model.KeyNotFoundError{Key: key}
	case err != nil:
		return model.Blob{}, fmt.Errorf("selecting blob: %w", err)
	}

	res.Modified = time.UnixMilli(modified)
	return res, nil
}

func (repo *sqliteBlobs) Put(key string, value []byte) (resErr error) {
	defer func(ts time.Time) {
		repo.metrics.observe(ts, resErr)
	}(time.Now())

	if _, err := repo.db.Exec(
		`INSERT INTO blobs (key, value, modified) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, modified = excluded.modified`,
		key,
		value,
		time.Now().UnixMilli(),
	); err != nil {
		return fmt.Errorf("upserting blob: %w", err)
	}

	return nil
}

func (repo *sqliteBlobs) Remove(key string) (resErr error) {
	defer func(ts time.Time) {
		repo.metrics.observe(ts, resErr)
	}(time.Now())

	if _, err := repo.db.Exec(`DELETE FROM blobs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}

func (repo *sqliteBlobs) Close() error {
	if err := repo.db.Close(); err != nil {
		return fmt.Errorf("closing sqlite db: %w", err)
	}
	return nil
}
