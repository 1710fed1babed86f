package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/horockey/cardshelf/internal/model"
	"github.com/horockey/cardshelf/internal/repository/blobs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const BlobKey = "inventory"

// Snapshot is a point-in-time copy of the inventory. Receivers must not modify it.
type Snapshot map[string]model.InventoryEntry

// Get returns entry for card, zero entry if card is not in the inventory.
func (s Snapshot) Get(cardID string) model.InventoryEntry {
	if e, found := s[cardID]; found {
		return e
	}
	return model.InventoryEntry{CardID: cardID}
}

// Store keeps per-card counters in memory and writes the whole map
// to blob storage after every change.
type Store struct {
	repo    blobs.Repository
	logger  zerolog.Logger
	metrics *metrics

	mu        sync.Mutex
	entries   map[string]model.InventoryEntry
	subs      map[uint64]chan Snapshot
	nextSubID uint64
}

func New(repo blobs.Repository, logger zerolog.Logger) *Store {
	return &Store{
		repo:    repo,
		logger:  logger,
		metrics: newMetrics(),
		entries: map[string]model.InventoryEntry{},
		subs:    map[uint64]chan Snapshot{},
	}
}

func (s *Store) Metrics() []prometheus.Collector {
	return s.metrics.list()
}

// Load replaces in-memory state with the persisted one.
// Absent or unparsable data yields an empty inventory.
func (s *Store) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("running context: %w", err)
	}

	entries := map[string]model.InventoryEntry{}

	blob, err := s.repo.Get(BlobKey)
	switch {
	case errors.As(err, &model.KeyNotFoundError{}):
		s.logger.Debug().Msg("no persisted inventory, starting empty")
	case err != nil:
		return fmt.Errorf("reading inventory blob: %w", err)
	default:
		decoded, err := decode(blob.Value)
		if err != nil {
			s.metrics.loadFallbackCnt.Inc()
			s.logger.
				Warn().
				Err(err).
				Msg("persisted inventory is corrupted, falling back to empty one")
			break
		}
		entries = decoded
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = entries
	s.metrics.entriesGauge.Set(float64(len(entries)))
	s.publish()

	return nil
}

func (s *Store) Get(cardID string) model.InventoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot(s.entries).Get(cardID)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return maps.Clone(s.entries)
}

// Entries returns non-empty entries sorted by card id.
func (s *Store) Entries() []model.InventoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sortedEntries(s.entries)
}

func (s *Store) Increment(cardID string, c model.Counter) (model.InventoryEntry, error) {
	return s.update(cardID, func(e model.InventoryEntry) (model.InventoryEntry, error) {
		return e.With(c, e.Value(c)+1), nil
	})
}

// Decrement lowers counter by one. Counters never go below zero.
func (s *Store) Decrement(cardID string, c model.Counter) (model.InventoryEntry, error) {
	return s.update(cardID, func(e model.InventoryEntry) (model.InventoryEntry, error) {
		return e.With(c, max(e.Value(c)-1, 0)), nil
	})
}

func (s *Store) Set(cardID string, c model.Counter, value int) (model.InventoryEntry, error) {
	return s.update(cardID, func(e model.InventoryEntry) (model.InventoryEntry, error) {
		if value < 0 {
			return e, model.InvalidCountError{CardID: cardID, Counter: c, Value: value}
		}
		return e.With(c, value), nil
	})
}

// Subscribe delivers current snapshot immediately and a new one after every change.
// Slow receivers only get the latest snapshot. Cancel closes the channel.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++

	ch := make(chan Snapshot, 1)
	ch <- maps.Clone(s.entries)
	s.subs[id] = ch
	s.metrics.subscribers.Inc()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			delete(s.subs, id)
			close(ch)
			s.metrics.subscribers.Dec()
		})
	}
}

func (s *Store) update(
	cardID string,
	fn func(model.InventoryEntry) (model.InventoryEntry, error),
) (resEntry model.InventoryEntry, resErr error) {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return model.InventoryEntry{}, errors.New("got empty card id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.entries[cardID]
	if !existed {
		prev = model.InventoryEntry{CardID: cardID}
	}

	next, err := fn(prev)
	if err != nil {
		return prev, err
	}
	if next == prev {
		return next, nil
	}

	s.apply(next)

	if err := s.persist(); err != nil {
		s.metrics.errWritesCnt.Inc()
		if existed {
			s.entries[cardID] = prev
		} else {
			delete(s.entries, cardID)
		}
		return prev, fmt.Errorf("persisting inventory: %w", err)
	}

	s.metrics.writesCnt.Inc()
	s.metrics.entriesGauge.Set(float64(len(s.entries)))
	s.publish()

	return next, nil
}

func (s *Store) apply(e model.InventoryEntry) {
	if e.IsEmpty() {
		delete(s.entries, e.CardID)
		return
	}
	s.entries[e.CardID] = e
}

// persist must be called with s.mu held.
func (s *Store) persist() error {
	defer func(ts time.Time) {
		s.metrics.persistTimeHist.Observe(float64(time.Since(ts)))
	}(time.Now())

	data, err := json.Marshal(sortedEntries(s.entries))
	if err != nil {
		return fmt.Errorf("marshaling entries: %w", err)
	}

	if err := s.repo.Put(BlobKey, data); err != nil {
		return fmt.Errorf("writing inventory blob: %w", err)
	}

	return nil
}

// publish must be called with s.mu held.
func (s *Store) publish() {
	if len(s.subs) == 0 {
		return
	}

	snap := Snapshot(maps.Clone(s.entries))
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot; s.mu makes this the only sender.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func decode(data []byte) (map[string]model.InventoryEntry, error) {
	raw := []model.InventoryEntry{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	res := make(map[string]model.InventoryEntry, len(raw))
	for _, e := range raw {
		e.CardID = strings.TrimSpace(e.CardID)
		e.Owned = max(e.Owned, 0)
		e.Wishlist = max(e.Wishlist, 0)
		if e.CardID == "" || e.IsEmpty() {
			continue
		}
		res[e.CardID] = e
	}

	return res, nil
}

func sortedEntries(entries map[string]model.InventoryEntry) []model.InventoryEntry {
	res := lo.Values(entries)
	slices.SortFunc(res, func(a, b model.InventoryEntry) int {
		return strings.Compare(a.CardID, b.CardID)
	})
	return res
}
