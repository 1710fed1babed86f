package file_dataset_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/horockey/cardshelf/internal/gateway/dataset/file_dataset"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBundle = `{
	"series": [{"id": "ddd-s97", "name": "DAN DA DAN", "setCode": "DDD/S97", "releaseYear": 2024}],
	"cards": [
		{"id": "ddd-s97-001", "seriesId": "ddd-s97", "cardCode": "DDD/S97-001", "title": "Momo", "rarity": "SR", "description": "", "color": "YELLOW", "level": 0, "cost": 0}
	]
}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func Test_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	writeFile(t, path, validBundle)

	bundle, err := file_dataset.New(path, zerolog.Nop()).Load(context.Background())
	require.NoError(t, err)

	require.Len(t, bundle.Cards, 1)
	assert.Equal(t, "Momo", bundle.Cards[0].Title)
	require.NotNil(t, bundle.Cards[0].Level)
	assert.Equal(t, 0, *bundle.Cards[0].Level)
	assert.Nil(t, bundle.Cards[0].ImageURL)
}

func Test_Load_Missing(t *testing.T) {
	_, err := file_dataset.New(filepath.Join(t.TempDir(), "nope.json"), zerolog.Nop()).Load(context.Background())
	assert.Error(t, err)
}

func Test_Load_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	writeFile(t, path, `{"series": [`)

	_, err := file_dataset.New(path, zerolog.Nop()).Load(context.Background())
	assert.Error(t, err)
}

func Test_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	writeFile(t, path, validBundle)

	src := file_dataset.New(path, zerolog.Nop()).WithDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- src.Watch(ctx, func() { calls.Add(1) })
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, validBundle)

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func Test_Watch_WaitsForCallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	writeFile(t, path, validBundle)

	src := file_dataset.New(path, zerolog.Nop()).WithDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	done := make(chan error, 1)
	go func() {
		var once atomic.Bool
		done <- src.Watch(ctx, func() {
			if once.Swap(true) {
				return
			}
			close(started)
			<-release
			finished.Store(true)
		})
	}()

	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, validBundle)

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("callback was not called")
	}

	cancel()

	select {
	case <-done:
		t.Fatal("watch returned while callback was running")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.True(t, finished.Load())
}
