package file_dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/horockey/cardshelf/internal/gateway/dataset"
	"github.com/horockey/cardshelf/internal/model"
	"github.com/rs/zerolog"
)

var _ dataset.Source = &fileDataset{}

const defaultDebounce = 300 * time.Millisecond

type fileDataset struct {
	path     string
	debounce time.Duration
	logger   zerolog.Logger
}

func New(path string, logger zerolog.Logger) *fileDataset {
	return &fileDataset{
		path:     filepath.Clean(path),
		debounce: defaultDebounce,
		logger:   logger,
	}
}

// WithDebounce returns copy of source with custom reload debounce.
func (src *fileDataset) WithDebounce(d time.Duration) *fileDataset {
	cp := *src
	cp.debounce = d
	return &cp
}

func (src *fileDataset) Name() string {
	return "file:" + src.path
}

func (src *fileDataset) Load(_ context.Context) (model.Bundle, error) {
	data, err := os.ReadFile(src.path)
	if err != nil {
		return model.Bundle{}, fmt.Errorf("reading file: %w", err)
	}

	bundle, err := dataset.Decode(data)
	if err != nil {
		return model.Bundle{}, fmt.Errorf("decoding %s: %w", src.path, err)
	}

	return bundle, nil
}

// Watch calls onChange after the dataset file was written, created or renamed into place.
// Bursts of events are collapsed into one call. Blocks until ctx is done.
func (src *fileDataset) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Editors and the importer replace the file, so the directory is watched.
	if err := watcher.Add(filepath.Dir(src.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(src.path), err)
	}

	// Debounced callback runs on this goroutine, so it never outlives Watch.
	timer := time.NewTimer(src.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("running context: %w", ctx.Err())

		case ev, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if filepath.Clean(ev.Name) != src.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}

			src.logger.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("dataset file changed")

			timer.Reset(src.debounce)

		case <-timer.C:
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			src.logger.Error().Err(fmt.Errorf("watching dataset: %w", err)).Send()
		}
	}
}
