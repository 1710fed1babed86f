package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/horockey/cardshelf"
	"github.com/horockey/cardshelf/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "cardshelf.yaml"

var (
	// Global flags
	configPath  string
	logLevel    string
	dataDir     string
	datasetPath string
	backend     string
	jsonOutput  bool

	cfg config.Config
)

func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cardshelf",
		Short: "cardshelf - trading card catalogue and collection tracker",
		Long: `cardshelf browses a catalogue of trading cards grouped by series
and keeps per-card owned and wishlist counters.

The catalogue is read from a cards.json dataset (local file, URL or the
built-in one). Counters are stored locally in badger or sqlite.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for inventory storage")
	rootCmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "path to cards.json")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "inventory storage (badger, sqlite, memory)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newBrowseCommand())
	rootCmd.AddCommand(newSeriesCommand())
	rootCmd.AddCommand(newCardsCommand())
	rootCmd.AddCommand(newSearchCommand())
	rootCmd.AddCommand(newCardCommand())
	rootCmd.AddCommand(newCatalogueCommand())
	rootCmd.AddCommand(newInventoryCommand())
	rootCmd.AddCommand(newImportCommand())

	return rootCmd
}

// loadConfig merges config file, env and global flags, the latter win.
func loadConfig(cmd *cobra.Command) error {
	loaded, err := config.Load(configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if logLevel != "" {
		loaded.LogLevel = logLevel
	}
	if dataDir != "" {
		loaded.DataDir = dataDir
	}
	if datasetPath != "" {
		loaded.Dataset.Path = datasetPath
	}
	if backend != "" {
		loaded.Inventory.Backend = backend
	}

	if os.Getenv("LOG_LEVEL") == "" || logLevel != "" {
		lvl, err := zerolog.ParseLevel(loaded.LogLevel)
		if err != nil {
			return fmt.Errorf("parsing log level: %w", err)
		}
		zerolog.SetGlobalLevel(lvl)
	}

	cfg = loaded
	return nil
}

func clientOpts(logger zerolog.Logger, extra ...cardshelf.ClientOption) []cardshelf.ClientOption {
	opts := []cardshelf.ClientOption{
		cardshelf.WithLogger(logger),
		cardshelf.WithDataDir(cfg.DataDir),
		cardshelf.WithPageSize(cfg.PageSize),
		cardshelf.WithInventoryBackend(cardshelf.InventoryBackend(cfg.Inventory.Backend)),
		cardshelf.WithDatasetTimeout(cfg.Dataset.Timeout),
	}
	if cfg.Dataset.Path != "" {
		opts = append(opts, cardshelf.WithDatasetPath(cfg.Dataset.Path))
	}
	if cfg.Dataset.URL != "" {
		opts = append(opts, cardshelf.WithDatasetURL(cfg.Dataset.URL))
	}
	return append(opts, extra...)
}

// openClient creates client with loaded inventory and catalogue for one-shot commands.
func openClient(ctx context.Context) (*cardshelf.Client, error) {
	cl, err := cardshelf.NewClient(clientOpts(log.Logger)...)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	if err := cl.Load(ctx); err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("loading client: %w", err)
	}
	return cl, nil
}
