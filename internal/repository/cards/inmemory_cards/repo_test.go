package inmemory_cards_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/horockey/cardshelf/internal/gateway/dataset/embedded_dataset"
	"github.com/horockey/cardshelf/internal/model"
	"github.com/horockey/cardshelf/internal/repository/cards/inmemory_cards"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	mu     sync.Mutex
	bundle model.Bundle
	err    error
	calls  int
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) Load(context.Context) (model.Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.bundle, s.err
}

func (s *countingSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func genBundle(seriesCnt, cardsPerSeries int) model.Bundle {
	b := model.Bundle{}
	for s := range seriesCnt {
		sid := fmt.Sprintf("s%d", s)
		b.Series = append(b.Series, model.Series{ID: sid, Name: "Series " + sid, SetCode: "S/" + sid, ReleaseYear: 2024})
		for c := range cardsPerSeries {
			b.Cards = append(b.Cards, model.Card{
				ID:       fmt.Sprintf("%s-%03d", sid, c),
				SeriesID: sid,
				CardCode: fmt.Sprintf("S/%s-%03d", sid, c),
				Title:    fmt.Sprintf("Card %d of %s", c, sid),
				Rarity:   "C",
			})
		}
	}
	return b
}

func Test_LazyLoadOnce(t *testing.T) {
	src := &countingSource{bundle: genBundle(2, 3)}
	repo := inmemory_cards.New(src, 2, zerolog.Nop())

	assert.Equal(t, 0, src.Calls())

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ListSeries(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, src.Calls())
}

func Test_FailedLoadNotCached(t *testing.T) {
	src := &countingSource{err: errors.New("boom")}
	repo := inmemory_cards.New(src, 2, zerolog.Nop())

	_, err := repo.ListSeries(context.Background())
	assert.ErrorContains(t, err, "boom")

	src.mu.Lock()
	src.err = nil
	src.bundle = genBundle(1, 1)
	src.mu.Unlock()

	series, err := repo.ListSeries(context.Background())
	require.NoError(t, err)
	assert.Len(t, series, 1)
	assert.Equal(t, 2, src.Calls())
}

func Test_CardsBySeries(t *testing.T) {
	repo := inmemory_cards.New(&countingSource{bundle: genBundle(2, 5)}, 2, zerolog.Nop())
	ctx := context.Background()

	page, err := repo.CardsBySeries(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1-000", "s1-001"}, lo.Map(page.Items, func(c model.Card, _ int) string { return c.ID }))
	assert.Equal(t, 5, page.Total)
	assert.True(t, page.HasMore)

	page, err = repo.CardsBySeries(ctx, "s1", 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)

	_, err = repo.CardsBySeries(ctx, "absent", 0)
	assert.True(t, errors.Is(err, model.SeriesNotFoundError{ID: "absent"}))

	_, err = repo.CardsBySeries(ctx, "s1", -1)
	assert.True(t, errors.As(err, &model.InvalidPageError{}))
}

func Test_Search(t *testing.T) {
	repo := inmemory_cards.New(embedded_dataset.New(), 5, zerolog.Nop())
	ctx := context.Background()

	page, err := repo.Search(ctx, "   ", 0)
	require.NoError(t, err)
	assert.Equal(t, 24, page.Total)
	assert.Len(t, page.Items, 5)

	page, err = repo.Search(ctx, "FERN", 0)
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	for _, c := range page.Items {
		assert.Contains(t, c.Title, "Fern")
	}

	page, err = repo.Search(ctx, "sfn/s108-001", 0)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "sfn-s108-001", page.Items[0].ID)

	page, err = repo.Search(ctx, "campfire", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	page, err = repo.Search(ctx, "no such card anywhere", 0)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
}

func Test_Card(t *testing.T) {
	repo := inmemory_cards.New(&countingSource{bundle: genBundle(1, 2)}, 2, zerolog.Nop())

	c, err := repo.Card(context.Background(), "s0-001")
	require.NoError(t, err)
	assert.Equal(t, "S/s0-001", c.CardCode)

	_, err = repo.Card(context.Background(), "zzz")
	assert.True(t, errors.Is(err, model.CardNotFoundError{ID: "zzz"}))
}

func Test_DuplicateCardsDropped(t *testing.T) {
	b := genBundle(1, 2)
	b.Cards = append(b.Cards, model.Card{ID: "s0-000", SeriesID: "s0", CardCode: "dup", Title: "dup"})

	repo := inmemory_cards.New(&countingSource{bundle: b}, 10, zerolog.Nop())

	all, err := repo.AllCards(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	c, err := repo.Card(context.Background(), "s0-000")
	require.NoError(t, err)
	assert.NotEqual(t, "dup", c.Title)
}

func Test_Reload(t *testing.T) {
	src := &countingSource{bundle: genBundle(1, 1)}
	repo := inmemory_cards.New(src, 10, zerolog.Nop())
	ctx := context.Background()

	_, err := repo.ListSeries(ctx)
	require.NoError(t, err)

	src.mu.Lock()
	src.bundle = genBundle(3, 1)
	src.mu.Unlock()

	require.NoError(t, repo.Reload(ctx))
	series, err := repo.ListSeries(ctx)
	require.NoError(t, err)
	assert.Len(t, series, 3)

	src.mu.Lock()
	src.err = errors.New("gone")
	src.mu.Unlock()

	assert.Error(t, repo.Reload(ctx))
	series, err = repo.ListSeries(ctx)
	require.NoError(t, err)
	assert.Len(t, series, 3)
}

func Test_ResultsAreCopies(t *testing.T) {
	repo := inmemory_cards.New(&countingSource{bundle: genBundle(1, 2)}, 10, zerolog.Nop())
	ctx := context.Background()

	all, err := repo.AllCards(ctx)
	require.NoError(t, err)
	all[0].Title = "mutated"

	c, err := repo.Card(ctx, all[0].ID)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", c.Title)
}

func Test_ResultsAreCopies_OptionalFields(t *testing.T) {
	b := genBundle(1, 1)
	b.Cards[0].Level = lo.ToPtr(1)
	b.Cards[0].Color = lo.ToPtr("RED")
	repo := inmemory_cards.New(&countingSource{bundle: b}, 10, zerolog.Nop())
	ctx := context.Background()

	c, err := repo.Card(ctx, "s0-000")
	require.NoError(t, err)
	*c.Level = 99
	*c.Color = "BLUE"

	all, err := repo.AllCards(ctx)
	require.NoError(t, err)
	*all[0].Level = 98

	page, err := repo.CardsBySeries(ctx, "s0", 0)
	require.NoError(t, err)
	*page.Items[0].Level = 97

	page, err = repo.Search(ctx, "card", 0)
	require.NoError(t, err)
	*page.Items[0].Level = 96

	c, err = repo.Card(ctx, "s0-000")
	require.NoError(t, err)
	assert.Equal(t, 1, *c.Level)
	assert.Equal(t, "RED", *c.Color)
}

func Test_Search_CaseFolding(t *testing.T) {
	b := genBundle(1, 2)
	b.Cards[0].Title = "\u212Aelvin Blade"
	b.Cards[1].Description = "Summons KELVIN"
	repo := inmemory_cards.New(&countingSource{bundle: b}, 10, zerolog.Nop())
	ctx := context.Background()

	page, err := repo.Search(ctx, "kelvin", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = repo.Search(ctx, "\u212A", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func Test_DefaultPageSize(t *testing.T) {
	repo := inmemory_cards.New(&countingSource{}, 0, zerolog.Nop())
	assert.Equal(t, inmemory_cards.DefaultPageSize, repo.PageSize())
}
