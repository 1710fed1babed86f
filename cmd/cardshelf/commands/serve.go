package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/horockey/cardshelf"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var (
		addr   string
		apiKey string
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve catalogue and inventory over HTTP",
		Long: `Serve the catalogue and inventory over a local HTTP API.

Routes:
  GET  /series
  GET  /series/{id}/cards?page=
  GET  /cards/search?q=&page=
  GET  /cards/{id}
  GET  /catalogue?series=&q=&rarity=&color=&ownership=&page=&size=
  GET  /inventory
  GET  /inventory/{cardId}
  POST /inventory/{cardId}/{owned|wishlist}/increment
  POST /inventory/{cardId}/{owned|wishlist}/decrement
  PUT  /inventory/{cardId}/{owned|wishlist}   {"value": n}
  GET  /metrics

Mutating routes require X-Api-Key header when api key is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = cfg.HTTP.Addr
			}
			if !cmd.Flags().Changed("api-key") {
				apiKey = cfg.HTTP.APIKey
			}
			if !cmd.Flags().Changed("watch") {
				watch = cfg.Dataset.Watch
			}

			cl, err := cardshelf.NewClient(clientOpts(
				log.Logger,
				cardshelf.WithHTTPAddr(addr),
				cardshelf.WithAPIKey(apiKey),
				cardshelf.WithDatasetWatch(watch),
			)...)
			if err != nil {
				return fmt.Errorf("creating client: %w", err)
			}
			defer cl.Close()

			if apiKey == "" {
				log.Warn().Msg("api key is not set, inventory routes are open")
			}

			if err := cl.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "api key for mutating routes")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload dataset file on change")

	return cmd
}
