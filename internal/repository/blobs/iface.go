package blobs

import (
	"github.com/horockey/cardshelf/internal/model"
)

type Repository interface {
	model.MetricsProvider
	Get(key string) (model.Blob, error)
	Put(key string, value []byte) error
	Remove(key string) error
	Close() error
}
