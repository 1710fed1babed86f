package cardshelf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/horockey/cardshelf/internal/controller/http_controller"
	"github.com/horockey/cardshelf/internal/gateway/dataset"
	"github.com/horockey/cardshelf/internal/gateway/dataset/embedded_dataset"
	"github.com/horockey/cardshelf/internal/gateway/dataset/file_dataset"
	"github.com/horockey/cardshelf/internal/gateway/dataset/http_dataset"
	"github.com/horockey/cardshelf/internal/inventory"
	"github.com/horockey/cardshelf/internal/model"
	"github.com/horockey/cardshelf/internal/presenter"
	"github.com/horockey/cardshelf/internal/repository/blobs"
	"github.com/horockey/cardshelf/internal/repository/blobs/badger_blobs"
	"github.com/horockey/cardshelf/internal/repository/blobs/inmemory_blobs"
	"github.com/horockey/cardshelf/internal/repository/blobs/sqlite_blobs"
	"github.com/horockey/cardshelf/internal/repository/cards"
	"github.com/horockey/cardshelf/internal/repository/cards/inmemory_cards"
	"github.com/horockey/go-toolbox/options"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

type InventoryBackend string

const (
	InventoryBackendBadger InventoryBackend = "badger"
	InventoryBackendSqlite InventoryBackend = "sqlite"
	InventoryBackendMemory InventoryBackend = "memory"
)

type watcher interface {
	Watch(ctx context.Context, onChange func()) error
}

type Client struct {
	*presenter.Presenter
	cardsRepo cards.Repository
	blobRepo  blobs.Repository
	inv       *inventory.Store
	ctrl      Controller
	watcher   watcher
	registry  *prometheus.Registry
	logger    zerolog.Logger

	metricsProviders []model.MetricsProvider
}

type createClientParams struct {
	dataDir          string
	datasetPath      string
	datasetURL       string
	datasetTimeout   time.Duration
	datasetWatch     bool
	pageSize         int
	inventoryBackend InventoryBackend
	httpAddr         string
	apiKey           string
	logger           zerolog.Logger

	blobRepo blobs.Repository
}

func defaultCreateClientParams() createClientParams {
	return createClientParams{
		dataDir:          "./data",
		datasetTimeout:   time.Second * 10, //nolint: mnd
		pageSize:         inmemory_cards.DefaultPageSize,
		inventoryBackend: InventoryBackendBadger,
		logger: zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().
			Timestamp().
			Str("scope", "cardshelf_client").
			Logger(),
	}
}

func NewClient(opts ...options.Option[createClientParams]) (*Client, error) {
	params := defaultCreateClientParams()
	if err := options.ApplyOptions(&params, opts...); err != nil {
		return nil, fmt.Errorf("applying opts: %w", err)
	}

	cl := Client{
		registry: prometheus.NewRegistry(),
		logger:   params.logger,
	}

	var sources []dataset.Source
	if params.datasetPath != "" {
		src := file_dataset.New(
			params.datasetPath,
			params.logger.With().Str("subscope", "file_dataset").Logger(),
		)
		sources = append(sources, src)
		if params.datasetWatch {
			cl.watcher = src
		}
	}
	if params.datasetURL != "" {
		src := http_dataset.New(
			params.datasetURL,
			params.datasetTimeout,
			params.logger.With().Str("subscope", "http_dataset").Logger(),
		)
		sources = append(sources, src)
		cl.metricsProviders = append(cl.metricsProviders, src)
	}
	sources = append(sources, embedded_dataset.New())

	cl.cardsRepo = inmemory_cards.New(
		dataset.Fallback(params.logger.With().Str("subscope", "dataset").Logger(), sources...),
		params.pageSize,
		params.logger.With().Str("subscope", "cards_repo").Logger(),
	)

	cl.blobRepo = params.blobRepo
	if cl.blobRepo == nil {
		repo, err := openBlobRepo(params.inventoryBackend, params.dataDir)
		if err != nil {
			return nil, fmt.Errorf("opening %s inventory storage: %w", params.inventoryBackend, err)
		}
		cl.blobRepo = repo
	}

	cl.inv = inventory.New(
		cl.blobRepo,
		params.logger.With().Str("subscope", "inventory").Logger(),
	)

	cl.Presenter = presenter.New(
		cl.cardsRepo,
		cl.inv,
		params.logger.With().Str("subscope", "presenter").Logger(),
	)

	if params.httpAddr != "" {
		cl.ctrl = http_controller.New(
			params.httpAddr,
			params.apiKey,
			cl.cardsRepo,
			cl.inv,
			params.pageSize,
			cl.registry,
			params.logger.With().Str("subscope", "http_controller").Logger(),
		)
	}

	for _, c := range append(cl.Metrics(), collectors.NewGoCollector()) {
		if err := cl.registry.Register(c); err != nil {
			_ = cl.blobRepo.Close()
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}

	return &cl, nil
}

func openBlobRepo(backend InventoryBackend, dataDir string) (blobs.Repository, error) {
	if backend == InventoryBackendMemory {
		return inmemory_blobs.New(), nil
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	switch backend {
	case InventoryBackendBadger:
		return badger_blobs.Open(filepath.Join(dataDir, "badger"))
	case InventoryBackendSqlite:
		return sqlite_blobs.Open(filepath.Join(dataDir, "cardshelf.db"))
	default:
		return nil, fmt.Errorf("unknown inventory backend: %q", backend)
	}
}

// Load reads persisted inventory and the first catalogue page.
// It is called by Start, one-shot callers (CLI commands) use it directly.
func (cl *Client) Load(ctx context.Context) error {
	if err := cl.inv.Load(ctx); err != nil {
		return fmt.Errorf("loading inventory: %w", err)
	}
	if err := cl.Presenter.Refresh(ctx); err != nil {
		return fmt.Errorf("loading catalogue: %w", err)
	}
	return nil
}

func (cl *Client) Start(ctx context.Context) error {
	if err := cl.inv.Load(ctx); err != nil {
		return fmt.Errorf("loading inventory: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	if cl.ctrl != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := cl.ctrl.Start(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				cl.logger.
					Error().
					Err(fmt.Errorf("running http controller: %w", err)).
					Send()
				cancel()
			}
		}()
	}

	if cl.watcher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := cl.watcher.Watch(runCtx, func() {
				if err := cl.Reload(runCtx); err != nil {
					cl.logger.
						Error().
						Err(fmt.Errorf("reloading dataset: %w", err)).
						Send()
				}
			}); err != nil && !errors.Is(err, context.Canceled) {
				cl.logger.
					Error().
					Err(fmt.Errorf("watching dataset: %w", err)).
					Send()
				cancel()
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := cl.Presenter.Start(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			cl.logger.
				Error().
				Err(fmt.Errorf("running presenter: %w", err)).
				Send()
			cancel()
		}
	}()

	<-runCtx.Done()
	wg.Wait()
	return fmt.Errorf("running context: %w", runCtx.Err())
}

// Reload loads dataset again and refreshes presenter. On failure the
// previously loaded dataset stays in use.
func (cl *Client) Reload(ctx context.Context) error {
	if err := cl.cardsRepo.Reload(ctx); err != nil {
		return fmt.Errorf("reloading cards: %w", err)
	}
	if err := cl.Presenter.Refresh(ctx); err != nil {
		return fmt.Errorf("refreshing presenter: %w", err)
	}
	return nil
}

func (cl *Client) Close() error {
	if err := cl.blobRepo.Close(); err != nil {
		return fmt.Errorf("closing inventory storage: %w", err)
	}
	return nil
}

func (cl *Client) Metrics() []prometheus.Collector {
	res := slices.Concat(
		cl.Presenter.Metrics(),
		cl.cardsRepo.Metrics(),
		cl.blobRepo.Metrics(),
		cl.inv.Metrics(),
	)
	if cl.ctrl != nil {
		res = append(res, cl.ctrl.Metrics()...)
	}
	for _, mp := range cl.metricsProviders {
		res = append(res, mp.Metrics()...)
	}
	return res
}

// Gatherer exposes registry holding every client collector.
func (cl *Client) Gatherer() prometheus.Gatherer {
	return cl.registry
}

func (cl *Client) ListSeries(ctx context.Context) ([]Series, error) {
	return cl.cardsRepo.ListSeries(ctx)
}

func (cl *Client) CardsBySeries(ctx context.Context, seriesID string, page int) (Page[Card], error) {
	return cl.cardsRepo.CardsBySeries(ctx, seriesID, page)
}

func (cl *Client) Search(ctx context.Context, keyword string, page int) (Page[Card], error) {
	return cl.cardsRepo.Search(ctx, keyword, page)
}

func (cl *Client) Card(ctx context.Context, id string) (Card, error) {
	return cl.cardsRepo.Card(ctx, id)
}

// Catalogue evaluates filters over the whole base list without touching presenter state.
func (cl *Client) Catalogue(ctx context.Context, seriesID string, f Filters, page int, pageSize int) (Page[Row], error) {
	return presenter.Evaluate(ctx, cl.cardsRepo, cl.inv.Snapshot(), seriesID, f, page, pageSize)
}

func (cl *Client) Inventory() []InventoryEntry {
	return cl.inv.Entries()
}

func (cl *Client) InventoryEntry(cardID string) InventoryEntry {
	return cl.inv.Get(cardID)
}
