package inmemory_blobs

import (
	"slices"
	"sync"
	"time"

	"github.com/horockey/cardshelf/internal/model"
	"github.com/horockey/cardshelf/internal/repository/blobs"
	"github.com/prometheus/client_golang/prometheus"
)

var _ blobs.Repository = &inmemoryBlobs{}

type inmemoryBlobs struct {
	storage map[string]*item
	mu      sync.RWMutex
	metrics *metrics

	// Put fails with this error when set. Used to emulate broken storage.
	failWith error
}

type item struct {
	value    []byte
	modified time.Time
}

func New() *inmemoryBlobs {
	repo := inmemoryBlobs{
		storage: map[string]*item{},
	}

	repo.metrics = newMetrics(&repo)

	return &repo
}

// FailPuts makes every subsequent Put return err. Nil restores normal behaviour.
func (repo *inmemoryBlobs) FailPuts(err error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.failWith = err
}

func (repo *inmemoryBlobs) Get(key string) (res model.Blob, resErr error) {
	defer func(ts time.Time) {
		repo.metrics.observe(ts, resErr)
	}(time.Now())

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	it, found := repo.storage[key]
	if !found {
		return model.Blob{}, model.KeyNotFoundError{Key: key}
	}

	return model.Blob{
		Key:      key,
		Value:    slices.Clone(it.value),
		Modified: it.modified,
	}, nil
}

func (repo *inmemoryBlobs) Put(key string, value []byte) (resErr error) {
	defer func(ts time.Time) {
		repo.metrics.observe(ts, resErr)
	}(time.Now())

	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.failWith != nil {
		return repo.failWith
	}

	repo.storage[key] = &item{value: slices.Clone(value), modified: time.Now()}
	return nil
}

func (repo *inmemoryBlobs) Remove(key string) (resErr error) {
	defer func(ts time.Time) {
		repo.metrics.observe(ts, resErr)
	}(time.Now())

	repo.mu.Lock()
	defer repo.mu.Unlock()

	delete(repo.storage, key)
	return nil
}

func (repo *inmemoryBlobs) Close() error {
	return nil
}

func (repo *inmemoryBlobs) Metrics() []prometheus.Collector {
	return repo.metrics.list()
}
