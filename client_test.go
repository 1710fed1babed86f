package cardshelf_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/horockey/cardshelf"
	"github.com/horockey/cardshelf/internal/repository/blobs/inmemory_blobs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smallDataset = `{
	"series": [{"id": "tst-w01", "name": "Test", "setCode": "TST/W01", "releaseYear": 2024}],
	"cards": [
		{"id": "tst-w01-001", "seriesId": "tst-w01", "cardCode": "TST/W01-001", "title": "Alpha", "rarity": "C", "color": "RED"},
		{"id": "tst-w01-002", "seriesId": "tst-w01", "cardCode": "TST/W01-002", "title": "Beta", "rarity": "SR"}
	]
}`

func Test_Client_EmbeddedDataset(t *testing.T) {
	cl, err := cardshelf.NewClient(
		cardshelf.WithLogger(zerolog.Nop()),
		cardshelf.WithInventoryBackend(cardshelf.InventoryBackendMemory),
		cardshelf.WithPageSize(5),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cl.Close() })

	ctx := context.Background()
	require.NoError(t, cl.Load(ctx))

	series, err := cl.ListSeries(ctx)
	require.NoError(t, err)
	assert.Len(t, series, 2)

	page, err := cl.Search(ctx, "fern", 1)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 6, page.Total)

	_, err = cl.CardsBySeries(ctx, "nope", 0)
	assert.ErrorIs(t, err, cardshelf.ErrSeriesNotFoundError{ID: "nope"})

	_, err = cl.Card(ctx, "nope")
	assert.ErrorIs(t, err, cardshelf.ErrCardNotFoundError{ID: "nope"})

	_, err = cl.Increment("sfn-s108-001", cardshelf.CounterOwned)
	require.NoError(t, err)
	assert.Equal(t, 1, cl.InventoryEntry("sfn-s108-001").Owned)
	assert.Len(t, cl.Inventory(), 1)

	rows, err := cl.Catalogue(ctx, "", cardshelf.Filters{Ownership: cardshelf.OwnershipOwned}, 0, 10)
	require.NoError(t, err)
	require.Len(t, rows.Items, 1)

	assert.Len(t, cl.State().Rows, 5)

	mfs, err := cl.Gatherer().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func Test_Client_DatasetFileFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	cl, err := cardshelf.NewClient(
		cardshelf.WithLogger(zerolog.Nop()),
		cardshelf.WithBlobRepo(inmemory_blobs.New()),
		cardshelf.WithDatasetPath(path),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cl.Close() })

	ctx := context.Background()
	require.NoError(t, cl.Load(ctx))
	assert.Equal(t, 24, cl.State().Total)

	// Reload picks up repaired file.
	require.NoError(t, os.WriteFile(path, []byte(smallDataset), 0o644))
	require.NoError(t, cl.Reload(ctx))
	assert.Equal(t, 2, cl.State().Total)
}

func Test_Client_PersistentBackends(t *testing.T) {
	for _, backend := range []cardshelf.InventoryBackend{
		cardshelf.InventoryBackendBadger,
		cardshelf.InventoryBackendSqlite,
	} {
		t.Run(string(backend), func(t *testing.T) {
			dir := t.TempDir()
			ctx := context.Background()

			open := func() *cardshelf.Client {
				cl, err := cardshelf.NewClient(
					cardshelf.WithLogger(zerolog.Nop()),
					cardshelf.WithDataDir(dir),
					cardshelf.WithInventoryBackend(backend),
				)
				require.NoError(t, err)
				require.NoError(t, cl.Load(ctx))
				return cl
			}

			cl := open()
			_, err := cl.Set("ddd-s97-001", cardshelf.CounterWishlist, 3)
			require.NoError(t, err)
			require.NoError(t, cl.Close())

			cl = open()
			defer cl.Close()
			assert.Equal(t, 3, cl.InventoryEntry("ddd-s97-001").Wishlist)
		})
	}
}

func Test_Client_StartWatchesDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	require.NoError(t, os.WriteFile(path, []byte(smallDataset), 0o644))

	cl, err := cardshelf.NewClient(
		cardshelf.WithLogger(zerolog.Nop()),
		cardshelf.WithInventoryBackend(cardshelf.InventoryBackendMemory),
		cardshelf.WithDatasetPath(path),
		cardshelf.WithDatasetWatch(true),
		cardshelf.WithHTTPAddr("127.0.0.1:0"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cl.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- cl.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return cl.State().Total == 2
	}, 2*time.Second, 10*time.Millisecond)

	updated := `{
		"series": [{"id": "tst-w01", "name": "Test", "setCode": "TST/W01", "releaseYear": 2024}],
		"cards": [{"id": "tst-w01-001", "seriesId": "tst-w01", "cardCode": "TST/W01-001", "title": "Alpha", "rarity": "C"}]
	}`
	// Watcher may still be starting, so the write is repeated slower than reload debounce.
	assert.Eventually(t, func() bool {
		if cl.State().Total == 1 {
			return true
		}
		_ = os.WriteFile(path, []byte(updated), 0o644)
		return false
	}, 5*time.Second, 500*time.Millisecond)

	cancel()
	err = <-done
	assert.True(t, errors.Is(err, context.Canceled))
}

func Test_Client_Opts(t *testing.T) {
	testCases := []struct {
		name string
		opt  func() error
	}{
		{"empty data dir", func() error { _, err := cardshelf.NewClient(cardshelf.WithDataDir("")); return err }},
		{"bad url", func() error { _, err := cardshelf.NewClient(cardshelf.WithDatasetURL("ftp://x")); return err }},
		{"zero page size", func() error { _, err := cardshelf.NewClient(cardshelf.WithPageSize(0)); return err }},
		{"bad backend", func() error {
			_, err := cardshelf.NewClient(cardshelf.WithInventoryBackend("redis"))
			return err
		}},
		{"nil blob repo", func() error { _, err := cardshelf.NewClient(cardshelf.WithBlobRepo(nil)); return err }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.opt())
		})
	}
}
