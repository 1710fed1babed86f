package presenter

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/horockey/cardshelf/internal/inventory"
	"github.com/horockey/cardshelf/internal/model"
	"github.com/horockey/cardshelf/internal/repository/cards"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type Inventory interface {
	Snapshot() inventory.Snapshot
	Subscribe() (<-chan inventory.Snapshot, func())
	Increment(cardID string, c model.Counter) (model.InventoryEntry, error)
	Decrement(cardID string, c model.Counter) (model.InventoryEntry, error)
	Set(cardID string, c model.Counter, value int) (model.InventoryEntry, error)
}

type Presenter struct {
	repo    cards.Repository
	inv     Inventory
	Logger  zerolog.Logger
	metrics *metrics

	// loadMu serializes inputs touching the repository, mu guards state.
	loadMu    sync.Mutex
	mu        sync.Mutex
	state     State
	snap      inventory.Snapshot
	subs      map[uint64]chan State
	nextSubID uint64
}

func New(
	repo cards.Repository,
	inv Inventory,
	logger zerolog.Logger,
) *Presenter {
	pr := &Presenter{
		repo:    repo,
		inv:     inv,
		Logger:  logger,
		metrics: newMetrics(),
		snap:    inv.Snapshot(),
		subs:    map[uint64]chan State{},
	}
	pr.state.Filters.Ownership = OwnershipAll
	pr.state.PageIndex = -1
	return pr
}

func (pr *Presenter) Metrics() []prometheus.Collector {
	return pr.metrics.list()
}

// Start performs initial load and keeps rows in sync with inventory until ctx is done.
func (pr *Presenter) Start(ctx context.Context) error {
	if err := pr.Refresh(ctx); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}

	snaps, cancel := pr.inv.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("running context: %w", ctx.Err())
		case snap, ok := <-snaps:
			if !ok {
				return errors.New("inventory subscription closed")
			}
			pr.mu.Lock()
			pr.snap = snap
			pr.recompute()
			pr.publish()
			pr.mu.Unlock()
		}
	}
}

// State returns a copy of current state.
func (pr *Presenter) State() State {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.state.clone()
}

// Subscribe delivers current state immediately and every following one.
// Slow receivers only get the latest state. Cancel closes the channel.
func (pr *Presenter) Subscribe() (<-chan State, func()) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	id := pr.nextSubID
	pr.nextSubID++

	ch := make(chan State, 1)
	ch <- pr.state.clone()
	pr.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			pr.mu.Lock()
			defer pr.mu.Unlock()
			delete(pr.subs, id)
			close(ch)
		})
	}
}

// Refresh reloads series list and the first page of current base list.
// Selection of a series which disappeared from the dataset is dropped.
func (pr *Presenter) Refresh(ctx context.Context) error {
	pr.metrics.inputsCnt.WithLabelValues("refresh").Inc()

	pr.loadMu.Lock()
	defer pr.loadMu.Unlock()

	series, err := pr.repo.ListSeries(ctx)
	if err != nil {
		pr.fail(err)
		return fmt.Errorf("listing series: %w", err)
	}

	pr.mu.Lock()
	pr.state.Series = series
	if !slices.ContainsFunc(series, func(s model.Series) bool { return s.ID == pr.state.SelectedSeriesID }) {
		pr.state.SelectedSeriesID = ""
	}
	pr.mu.Unlock()

	return pr.reload(ctx)
}

// SelectSeries narrows base list to one series. Blank id selects all cards.
func (pr *Presenter) SelectSeries(ctx context.Context, id string) error {
	pr.metrics.inputsCnt.WithLabelValues("select_series").Inc()

	pr.loadMu.Lock()
	defer pr.loadMu.Unlock()

	id = strings.TrimSpace(id)

	pr.mu.Lock()
	if id != "" && !slices.ContainsFunc(pr.state.Series, func(s model.Series) bool { return s.ID == id }) {
		pr.mu.Unlock()
		err := model.SeriesNotFoundError{ID: id}
		pr.fail(err)
		return err
	}
	pr.state.SelectedSeriesID = id
	pr.mu.Unlock()

	return pr.reload(ctx)
}

func (pr *Presenter) SetSearchText(ctx context.Context, text string) error {
	pr.metrics.inputsCnt.WithLabelValues("search").Inc()

	pr.loadMu.Lock()
	defer pr.loadMu.Unlock()

	pr.mu.Lock()
	pr.state.Filters.SearchText = text
	pr.mu.Unlock()

	return pr.reload(ctx)
}

// LoadMore appends next page of the base list. No-op when everything is loaded.
func (pr *Presenter) LoadMore(ctx context.Context) error {
	pr.metrics.inputsCnt.WithLabelValues("load_more").Inc()

	pr.loadMu.Lock()
	defer pr.loadMu.Unlock()

	pr.mu.Lock()
	if !pr.state.HasMore {
		pr.mu.Unlock()
		return nil
	}
	seriesID, text, next := pr.state.SelectedSeriesID, pr.state.Filters.SearchText, pr.state.PageIndex+1
	pr.state.Loading = true
	pr.publish()
	pr.mu.Unlock()

	page, err := pr.fetch(ctx, seriesID, text, next)
	if err != nil {
		pr.fail(err)
		return fmt.Errorf("loading page %d: %w", next, err)
	}

	pr.mu.Lock()
	defer pr.mu.Unlock()

	pr.state.Loaded = append(pr.state.Loaded, page.Items...)
	pr.applyPage(page)
	pr.recompute()
	pr.publish()

	return nil
}

func (pr *Presenter) SetRarity(rarity string) {
	pr.metrics.inputsCnt.WithLabelValues("rarity").Inc()
	pr.updateFilters(func(f *Filters) {
		f.Rarity = strings.ToUpper(strings.TrimSpace(rarity))
	})
}

func (pr *Presenter) ToggleColor(color string) {
	pr.metrics.inputsCnt.WithLabelValues("toggle_color").Inc()

	color = strings.ToUpper(strings.TrimSpace(color))
	if color == "" {
		return
	}

	pr.updateFilters(func(f *Filters) {
		if idx := slices.Index(f.Colors, color); idx >= 0 {
			f.Colors = slices.Delete(slices.Clone(f.Colors), idx, idx+1)
			return
		}
		f.Colors = normalizeColors(append(slices.Clone(f.Colors), color))
	})
}

func (pr *Presenter) SetColors(colors []string) {
	pr.metrics.inputsCnt.WithLabelValues("colors").Inc()
	pr.updateFilters(func(f *Filters) {
		f.Colors = normalizeColors(colors)
	})
}

func (pr *Presenter) SetOwnership(o Ownership) {
	pr.metrics.inputsCnt.WithLabelValues("ownership").Inc()
	pr.updateFilters(func(f *Filters) {
		f.Ownership = o
	})
}

// ClearFilters resets rarity, colors and ownership. Search text is reset too,
// which reloads the base list.
func (pr *Presenter) ClearFilters(ctx context.Context) error {
	pr.metrics.inputsCnt.WithLabelValues("clear").Inc()

	pr.updateFilters(func(f *Filters) {
		f.Rarity = ""
		f.Colors = nil
		f.Ownership = OwnershipAll
	})

	if pr.State().Filters.SearchText == "" {
		return nil
	}
	return pr.SetSearchText(ctx, "")
}

func (pr *Presenter) Increment(cardID string, c model.Counter) (model.InventoryEntry, error) {
	return pr.inventoryCmd(pr.inv.Increment(cardID, c))
}

func (pr *Presenter) Decrement(cardID string, c model.Counter) (model.InventoryEntry, error) {
	return pr.inventoryCmd(pr.inv.Decrement(cardID, c))
}

func (pr *Presenter) Set(cardID string, c model.Counter, value int) (model.InventoryEntry, error) {
	return pr.inventoryCmd(pr.inv.Set(cardID, c, value))
}

func (pr *Presenter) inventoryCmd(entry model.InventoryEntry, err error) (model.InventoryEntry, error) {
	pr.metrics.inputsCnt.WithLabelValues("inventory").Inc()
	if err != nil {
		return entry, fmt.Errorf("updating inventory: %w", err)
	}

	// Subscription catches up later, rows are refreshed right away for synchronous callers.
	snap := pr.inv.Snapshot()

	pr.mu.Lock()
	defer pr.mu.Unlock()

	pr.snap = snap
	pr.recompute()
	pr.publish()

	return entry, nil
}

func (pr *Presenter) updateFilters(fn func(f *Filters)) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	fn(&pr.state.Filters)
	pr.recompute()
	pr.publish()
}

// reload fetches first page of base list. Must be called with loadMu held.
func (pr *Presenter) reload(ctx context.Context) error {
	pr.mu.Lock()
	seriesID, text := pr.state.SelectedSeriesID, pr.state.Filters.SearchText
	pr.state.Loading = true
	pr.publish()
	pr.mu.Unlock()

	page, err := pr.fetch(ctx, seriesID, text, 0)
	if err != nil {
		pr.fail(err)
		return fmt.Errorf("loading first page: %w", err)
	}

	pr.mu.Lock()
	defer pr.mu.Unlock()

	pr.state.Loaded = page.Items
	pr.applyPage(page)
	pr.recompute()
	pr.publish()

	return nil
}

func (pr *Presenter) fetch(ctx context.Context, seriesID, text string, page int) (model.Page[model.Card], error) {
	if seriesID != "" {
		return pr.repo.CardsBySeries(ctx, seriesID, page)
	}
	return pr.repo.Search(ctx, text, page)
}

// applyPage must be called with mu held.
func (pr *Presenter) applyPage(page model.Page[model.Card]) {
	pr.state.PageIndex = page.Index
	pr.state.Total = page.Total
	pr.state.HasMore = page.HasMore
	pr.state.Loading = false
	pr.state.Err = ""
}

func (pr *Presenter) fail(err error) {
	pr.metrics.loadErrCnt.Inc()
	pr.Logger.Error().Err(err).Msg("catalogue load failed")

	pr.mu.Lock()
	defer pr.mu.Unlock()

	pr.state.Loading = false
	pr.state.Err = err.Error()
	pr.publish()
}

// recompute must be called with mu held.
func (pr *Presenter) recompute() {
	defer func(ts time.Time) {
		pr.metrics.recomputeTimeHist.Observe(float64(time.Since(ts)))
	}(time.Now())

	f := pr.state.Filters
	if pr.state.SelectedSeriesID == "" {
		// Base list is a repository search result already.
		f.SearchText = ""
	}

	pr.state.Rows = Apply(pr.state.Loaded, f, pr.snap)
	pr.state.Rarities = AvailableRarities(pr.state.Loaded)
	pr.state.Colors = AvailableColors(pr.state.Loaded)
	pr.metrics.visibleRowsGauge.Set(float64(len(pr.state.Rows)))
}

// publish must be called with mu held.
func (pr *Presenter) publish() {
	pr.state.Version++

	if len(pr.subs) == 0 {
		return
	}

	st := pr.state.clone()
	for _, ch := range pr.subs {
		select {
		case ch <- st:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
}
