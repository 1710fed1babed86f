package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/horockey/cardshelf/internal/gateway/dataset"
	"github.com/horockey/cardshelf/internal/importer"
	"github.com/horockey/cardshelf/internal/model"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var defaultSets = []string{"DDD", "SFN"}

func newImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Build cards.json datasets",
	}

	cmd.AddCommand(newImportCSVCommand())
	cmd.AddCommand(newImportFetchCommand())
	cmd.AddCommand(newImportMergeCommand())

	return cmd
}

func newImportCSVCommand() *cobra.Command {
	var (
		output string
		pretty bool
	)

	cmd := &cobra.Command{
		Use:   "csv <file>",
		Short: "Convert cards CSV into dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening csv: %w", err)
			}
			defer f.Close()

			bundle, err := importer.ImportCSV(f)
			if err != nil {
				return fmt.Errorf("importing csv: %w", err)
			}

			return writeDataset(cmd, bundle, output, pretty)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, stdout when empty")
	cmd.Flags().BoolVar(&pretty, "pretty", true, "indent output")

	return cmd
}

func newImportFetchCommand() *cobra.Command {
	var (
		output     string
		pretty     bool
		offlineDir string
		template   string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "fetch [set codes...]",
		Short: "Fetch official card lists into dataset",
		Long: `Fetch official card list exports and convert them into one dataset.

Default sets are DDD and SFN. When a set cannot be downloaded, <set>.json
from offline dir is used instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = defaultSets
			}
			if !cmd.Flags().Changed("offline-dir") {
				offlineDir = cfg.Importer.OfflineDir
			}
			if !cmd.Flags().Changed("template") {
				template = cfg.Importer.ExportTemplate
			}
			if !cmd.Flags().Changed("timeout") {
				timeout = cfg.Importer.Timeout
			}

			cl := importer.NewOfficialClient(
				template,
				offlineDir,
				timeout,
				log.Logger.With().Str("subscope", "importer").Logger(),
			)

			bundle, err := cl.LoadSets(cmd.Context(), args...)
			if err != nil {
				return err
			}

			return writeDataset(cmd, bundle, output, pretty)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, stdout when empty")
	cmd.Flags().BoolVar(&pretty, "pretty", true, "indent output")
	cmd.Flags().StringVar(&offlineDir, "offline-dir", "", "directory with offline set payloads")
	cmd.Flags().StringVar(&template, "template", "", "export url template with {setCode}")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "request timeout")

	return cmd
}

func newImportMergeCommand() *cobra.Command {
	var (
		output string
		pretty bool
	)

	cmd := &cobra.Command{
		Use:   "merge <files...>",
		Short: "Merge datasets, first occurrence wins",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundles := make([]model.Bundle, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				b, err := dataset.Decode(data)
				if err != nil {
					return fmt.Errorf("decoding %s: %w", path, err)
				}
				bundles = append(bundles, b)
			}

			return writeDataset(cmd, importer.MergeBundles(bundles...), output, pretty)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, stdout when empty")
	cmd.Flags().BoolVar(&pretty, "pretty", true, "indent output")

	return cmd
}

func writeDataset(cmd *cobra.Command, bundle model.Bundle, output string, pretty bool) error {
	if err := dataset.Validate(bundle); err != nil {
		return err
	}

	if output == "" {
		return importer.WriteBundle(cmd.OutOrStdout(), bundle, pretty)
	}

	if err := importer.WriteBundleFile(output, bundle, pretty); err != nil {
		return err
	}

	log.Info().
		Str("path", output).
		Int("series", len(bundle.Series)).
		Int("cards", len(bundle.Cards)).
		Msg("dataset written")

	return nil
}
