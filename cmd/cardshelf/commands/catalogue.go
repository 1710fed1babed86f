package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/horockey/cardshelf"
	"github.com/spf13/cobra"
)

func newSeriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "series",
		Short: "List series of the catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cl, err := openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cl.Close()

			series, err := cl.ListSeries(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing series: %w", err)
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), series)
			}

			rows := make([][]string, 0, len(series))
			for _, s := range series {
				rows = append(rows, []string{s.ID, s.SetCode, s.Name, strconv.Itoa(s.ReleaseYear)})
			}
			return printTable(cmd.OutOrStdout(), []string{"ID", "Set", "Name", "Year"}, rows)
		},
	}
}

func newCardsCommand() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "cards <series-id>",
		Short: "List cards of one series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cl.Close()

			res, err := cl.CardsBySeries(cmd.Context(), args[0], page)
			if err != nil {
				return fmt.Errorf("listing cards: %w", err)
			}
			return printCardsPage(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 0, "zero-based page index")

	return cmd
}

func newSearchCommand() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "search <keyword>...",
		Short: "Search cards by title, code or description",
		Example: `  # Every card mentioning Fern
  cardshelf search fern

  # Second page
  cardshelf search fern --page 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cl.Close()

			res, err := cl.Search(cmd.Context(), strings.Join(args, " "), page)
			if err != nil {
				return fmt.Errorf("searching cards: %w", err)
			}
			return printCardsPage(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 0, "zero-based page index")

	return cmd
}

func newCardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "card <card-id>",
		Short: "Show card details with inventory counters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cl.Close()

			card, err := cl.Card(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("getting card: %w", err)
			}
			row := cardshelf.Row{Card: card, Entry: cl.InventoryEntry(card.ID)}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), row)
			}

			image := "-"
			if card.ImageURL != nil {
				image = *card.ImageURL
			}
			return printTable(cmd.OutOrStdout(), []string{"Field", "Value"}, [][]string{
				{"ID", card.ID},
				{"Series", card.SeriesID},
				{"Code", card.CardCode},
				{"Title", card.Title},
				{"Rarity", card.Rarity},
				{"Color", card.ColorName()},
				{"Level", optInt(card.Level)},
				{"Cost", optInt(card.Cost)},
				{"Image", image},
				{"Description", card.Description},
				{"Owned", strconv.Itoa(row.Entry.Owned)},
				{"Wishlist", strconv.Itoa(row.Entry.Wishlist)},
			})
		},
	}
}

func newCatalogueCommand() *cobra.Command {
	var (
		seriesID  string
		query     string
		rarity    string
		colors    []string
		ownership string
		page      int
		size      int
	)

	cmd := &cobra.Command{
		Use:   "catalogue",
		Short: "Filter catalogue by search text, rarity, colors and ownership",
		Example: `  # Owned green Fern cards
  cardshelf catalogue --series sfn-s108 --query fern --color green --ownership owned`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			own, err := cardshelf.ParseOwnership(ownership)
			if err != nil {
				return err
			}
			if size <= 0 {
				size = cfg.PageSize
			}

			cl, err := openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cl.Close()

			res, err := cl.Catalogue(cmd.Context(), seriesID, cardshelf.Filters{
				SearchText: query,
				Rarity:     strings.ToUpper(rarity),
				Colors:     colors,
				Ownership:  own,
			}, page, size)
			if err != nil {
				return fmt.Errorf("evaluating catalogue: %w", err)
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), res)
			}

			rows := make([][]string, 0, len(res.Items))
			for _, r := range res.Items {
				rows = append(rows, append(cardRow(r.Card), strconv.Itoa(r.Entry.Owned), strconv.Itoa(r.Entry.Wishlist)))
			}
			if err := printTable(cmd.OutOrStdout(), append(cardHeaders, "Owned", "Wishlist"), rows); err != nil {
				return err
			}
			return printPageFooter(cmd.OutOrStdout(), res.Index, len(res.Items), res.Total, res.HasMore)
		},
	}

	cmd.Flags().StringVarP(&seriesID, "series", "s", "", "series id, all series when empty")
	cmd.Flags().StringVarP(&query, "query", "q", "", "search in title and card code")
	cmd.Flags().StringVarP(&rarity, "rarity", "r", "", "rarity")
	cmd.Flags().StringSliceVar(&colors, "color", nil, "colors, card matches any of them")
	cmd.Flags().StringVarP(&ownership, "ownership", "o", "all", "all, owned, missing or wishlist")
	cmd.Flags().IntVarP(&page, "page", "p", 0, "zero-based page index")
	cmd.Flags().IntVar(&size, "size", 0, "page size, configured one when zero")

	return cmd
}
