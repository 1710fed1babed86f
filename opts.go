package cardshelf

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/horockey/cardshelf/internal/repository/blobs"
	"github.com/horockey/go-toolbox/options"
	"github.com/rs/zerolog"
)

type ClientOption = options.Option[createClientParams]

// Sets custom data dir for persistent inventory storages.
// Default is ./data
func WithDataDir(dir string) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if dir == "" {
			return errors.New("got empty data dir")
		}
		target.dataDir = dir
		return nil
	}
}

// Sets local cards.json to load dataset from.
// Embedded dataset is used when it can not be loaded.
func WithDatasetPath(path string) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if path == "" {
			return errors.New("got empty dataset path")
		}
		target.datasetPath = path
		return nil
	}
}

// Sets url to download cards.json from.
// Tried after local file, before embedded dataset.
func WithDatasetURL(rawURL string) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		u, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("parsing dataset url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("dataset url must be http(s), got: %q", rawURL)
		}
		target.datasetURL = rawURL
		return nil
	}
}

// Sets timeout for dataset download.
// Default is 10s.
func WithDatasetTimeout(to time.Duration) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if to <= 0 {
			return fmt.Errorf("dataset timeout must be positive, got: %s", to.String())
		}
		target.datasetTimeout = to
		return nil
	}
}

// Enables reloading of the dataset when local file changes.
// Takes effect only with WithDatasetPath.
func WithDatasetWatch(watch bool) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		target.datasetWatch = watch
		return nil
	}
}

// Sets custom page size of card lists.
// Default is 20.
func WithPageSize(size int) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if size <= 0 {
			return fmt.Errorf("page size must be positive, got: %d", size)
		}
		target.pageSize = size
		return nil
	}
}

// Sets storage for inventory.
// Default is badger.
func WithInventoryBackend(b InventoryBackend) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		switch b {
		case InventoryBackendBadger, InventoryBackendSqlite, InventoryBackendMemory:
			target.inventoryBackend = b
			return nil
		default:
			return fmt.Errorf("unknown inventory backend: %q", b)
		}
	}
}

// Sets user-defined inventory storage. Overrides WithInventoryBackend.
//
// WARNING! Apply this opt only if you know what you are doing.
func WithBlobRepo(repo blobs.Repository) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if repo == nil {
			return errors.New("got nil blob repo")
		}
		target.blobRepo = repo
		return nil
	}
}

// Enables HTTP API on given address.
// Disabled by default.
func WithHTTPAddr(addr string) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		if addr == "" {
			return errors.New("got empty http addr")
		}
		target.httpAddr = addr
		return nil
	}
}

// Sets api key required by mutating HTTP API routes.
// Mutating routes are open when not set.
func WithAPIKey(key string) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		target.apiKey = key
		return nil
	}
}

// Sets custom logger.
// Default is stdout logger.
func WithLogger(l zerolog.Logger) options.Option[createClientParams] {
	return func(target *createClientParams) error {
		target.logger = l
		return nil
	}
}
