package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/horockey/cardshelf"
	"github.com/horockey/cardshelf/internal/controller/tui_controller"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const browseLogFile = "cardshelf.log"

func newBrowseCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse catalogue in terminal UI",
		Long: `Browse the catalogue interactively.

Keys:
  up/down, pgup/pgdn  move
  /                   search (enter applies, esc cancels)
  s                   next series
  r                   next rarity
  1-9                 toggle color
  o                   next ownership filter
  c                   clear filters
  n                   load more
  + / -               change owned counter
  w / W               change wishlist counter
  q                   quit

Logs are written to cardshelf.log inside data dir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("watch") {
				watch = cfg.Dataset.Watch
			}

			logger, closeLog, err := fileLogger(filepath.Join(cfg.DataDir, browseLogFile))
			if err != nil {
				return err
			}
			defer closeLog()

			cl, err := cardshelf.NewClient(clientOpts(logger, cardshelf.WithDatasetWatch(watch))...)
			if err != nil {
				return fmt.Errorf("creating client: %w", err)
			}
			defer cl.Close()

			if err := cl.Load(cmd.Context()); err != nil {
				return fmt.Errorf("loading client: %w", err)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := cl.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error().Err(err).Msg("client stopped")
				}
			}()

			err = tui_controller.New(cl, logger, tea.WithAltScreen()).Start(ctx)
			cancel()
			wg.Wait()

			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "reload dataset file on change")

	return cmd
}

func fileLogger(path string) (zerolog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("creating log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("opening log file: %w", err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        f,
		NoColor:    true,
		TimeFormat: time.RFC3339,
	}).With().
		Timestamp().
		Str("scope", "cardshelf").
		Logger()

	return logger, func() { _ = f.Close() }, nil
}
