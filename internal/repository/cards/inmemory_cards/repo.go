package inmemory_cards

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/horockey/cardshelf/internal/gateway/dataset"
	"github.com/horockey/cardshelf/internal/model"
	"github.com/horockey/cardshelf/internal/repository/cards"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

var _ cards.Repository = &inmemoryCards{}

const DefaultPageSize = 20

type inmemoryCards struct {
	source   dataset.Source
	pageSize int
	logger   zerolog.Logger
	metrics  *metrics

	mu     sync.Mutex
	loaded *snapshot
}

// snapshot is immutable once built.
type snapshot struct {
	series   []model.Series
	cards    []model.Card
	byID     map[string]int
	bySeries map[string][]int
}

func New(
	source dataset.Source,
	pageSize int,
	logger zerolog.Logger,
) *inmemoryCards {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &inmemoryCards{
		source:   source,
		pageSize: pageSize,
		logger:   logger,
		metrics:  newMetrics(),
	}
}

func (repo *inmemoryCards) Metrics() []prometheus.Collector {
	return repo.metrics.list()
}

func (repo *inmemoryCards) PageSize() int {
	return repo.pageSize
}

func (repo *inmemoryCards) ListSeries(ctx context.Context) (res []model.Series, resErr error) {
	defer func(ts time.Time) {
		repo.metrics.observe(ts, resErr)
	}(time.Now())

	snap, err := repo.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return slices.Clone(snap.series), nil
}

func (repo *inmemoryCards) CardsBySeries(
	ctx context.Context,
	seriesID string,
	page int,
) (res model.Page[model.Card], resErr error) {
	defer func(ts time.Time) {
		repo.metrics.observe(ts, resErr)
	}(time.Now())

	snap, err := repo.snapshot(ctx)
	if err != nil {
		return model.Page[model.Card]{}, err
	}

	idxs, found := snap.bySeries[seriesID]
	if !found {
		return model.Page[model.Card]{}, model.SeriesNotFoundError{ID: seriesID}
	}

	return model.Paginate(
		lo.Map(idxs, func(i int, _ int) model.Card { return snap.cards[i].Clone() }),
		page,
		repo.pageSize,
	)
}

func (repo *inmemoryCards) Search(
	ctx context.Context,
	keyword string,
	page int,
) (res model.Page[model.Card], resErr error) {
	defer func(ts time.Time) {
		repo.metrics.observe(ts, resErr)
	}(time.Now())

	snap, err := repo.snapshot(ctx)
	if err != nil {
		return model.Page[model.Card]{}, err
	}

	found := snap.cards
	if keyword = model.Fold(strings.TrimSpace(keyword)); keyword != "" {
		found = lo.Filter(snap.cards, func(c model.Card, _ int) bool {
			return matchesKeyword(c, keyword)
		})
	}

	res, err = model.Paginate(found, page, repo.pageSize)
	if err != nil {
		return model.Page[model.Card]{}, err
	}
	res.Items = model.CloneCards(res.Items)

	return res, nil
}

func (repo *inmemoryCards) Card(ctx context.Context, id string) (res model.Card, resErr error) {
	defer func(ts time.Time) {
		repo.metrics.observe(ts, resErr)
	}(time.Now())

	snap, err := repo.snapshot(ctx)
	if err != nil {
		return model.Card{}, err
	}

	idx, found := snap.byID[id]
	if !found {
		return model.Card{}, model.CardNotFoundError{ID: id}
	}

	return snap.cards[idx].Clone(), nil
}

func (repo *inmemoryCards) AllCards(ctx context.Context) (res []model.Card, resErr error) {
	defer func(ts time.Time) {
		repo.metrics.observe(ts, resErr)
	}(time.Now())

	snap, err := repo.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return model.CloneCards(snap.cards), nil
}

// Reload loads dataset again. On failure previously loaded dataset is kept.
func (repo *inmemoryCards) Reload(ctx context.Context) error {
	snap, err := repo.load(ctx)
	if err != nil {
		return err
	}

	repo.mu.Lock()
	repo.loaded = snap
	repo.mu.Unlock()

	return nil
}

// snapshot loads dataset on first use. Failed loads are not cached.
func (repo *inmemoryCards) snapshot(ctx context.Context) (*snapshot, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.loaded != nil {
		return repo.loaded, nil
	}

	snap, err := repo.load(ctx)
	if err != nil {
		return nil, err
	}

	repo.loaded = snap
	return snap, nil
}

func (repo *inmemoryCards) load(ctx context.Context) (*snapshot, error) {
	bundle, err := repo.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading dataset from %s: %w", repo.source.Name(), err)
	}

	snap := &snapshot{
		series:   bundle.Series,
		cards:    make([]model.Card, 0, len(bundle.Cards)),
		byID:     make(map[string]int, len(bundle.Cards)),
		bySeries: make(map[string][]int, len(bundle.Series)),
	}

	for _, s := range bundle.Series {
		snap.bySeries[s.ID] = []int{}
	}
	for _, c := range bundle.Cards {
		if _, dup := snap.byID[c.ID]; dup {
			repo.logger.Warn().Str("card_id", c.ID).Msg("duplicate card id in dataset, first one wins")
			continue
		}
		idx := len(snap.cards)
		snap.cards = append(snap.cards, c)
		snap.byID[c.ID] = idx
		snap.bySeries[c.SeriesID] = append(snap.bySeries[c.SeriesID], idx)
	}

	repo.metrics.loadsCnt.Inc()
	repo.metrics.cardsGauge.Set(float64(len(snap.cards)))
	repo.metrics.seriesGauge.Set(float64(len(snap.series)))

	repo.logger.
		Info().
		Str("source", repo.source.Name()).
		Int("series", len(snap.series)).
		Int("cards", len(snap.cards)).
		Msg("dataset loaded")

	return snap, nil
}

// matchesKeyword expects folded keyword.
func matchesKeyword(c model.Card, keyword string) bool {
	return strings.Contains(model.Fold(c.Title), keyword) ||
		strings.Contains(model.Fold(c.CardCode), keyword) ||
		strings.Contains(model.Fold(c.Description), keyword)
}
