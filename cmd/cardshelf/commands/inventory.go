package commands

import (
	"fmt"
	"strconv"

	"github.com/horockey/cardshelf"
	"github.com/spf13/cobra"
)

func newInventoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "inventory",
		Aliases: []string{"inv"},
		Short:   "Owned and wishlist counters",
	}

	cmd.AddCommand(newInventoryListCommand())
	cmd.AddCommand(newInventoryGetCommand())
	cmd.AddCommand(newInventoryCounterCommand("inc", "Increment counter of a card",
		func(cl *cardshelf.Client, id string, c cardshelf.Counter, _ []string) (cardshelf.InventoryEntry, error) {
			return cl.Increment(id, c)
		}))
	cmd.AddCommand(newInventoryCounterCommand("dec", "Decrement counter of a card, never below zero",
		func(cl *cardshelf.Client, id string, c cardshelf.Counter, _ []string) (cardshelf.InventoryEntry, error) {
			return cl.Decrement(id, c)
		}))
	cmd.AddCommand(newInventorySetCommand())

	return cmd
}

func newInventoryListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cards with non-zero counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cl, err := openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cl.Close()

			entries := cl.Inventory()
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), entries)
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				title := "?"
				if card, err := cl.Card(cmd.Context(), e.CardID); err == nil {
					title = card.Title
				}
				rows = append(rows, []string{e.CardID, title, strconv.Itoa(e.Owned), strconv.Itoa(e.Wishlist)})
			}
			return printTable(cmd.OutOrStdout(), []string{"Card", "Title", "Owned", "Wishlist"}, rows)
		},
	}
}

func newInventoryGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <card-id>",
		Short: "Show counters of a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := openClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cl.Close()

			return printEntry(cmd, cl.InventoryEntry(args[0]))
		},
	}
}

type counterCmd func(cl *cardshelf.Client, id string, c cardshelf.Counter, args []string) (cardshelf.InventoryEntry, error)

func newInventoryCounterCommand(use, short string, fn counterCmd) *cobra.Command {
	var counter string

	cmd := &cobra.Command{
		Use:   use + " <card-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCounterCmd(cmd, counter, args[0], args[1:], fn)
		},
	}

	cmd.Flags().StringVar(&counter, "counter", string(cardshelf.CounterOwned), "owned or wishlist")

	return cmd
}

func newInventorySetCommand() *cobra.Command {
	var counter string

	cmd := &cobra.Command{
		Use:   "set <card-id> <value>",
		Short: "Set counter of a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCounterCmd(cmd, counter, args[0], args[1:],
				func(cl *cardshelf.Client, id string, c cardshelf.Counter, rest []string) (cardshelf.InventoryEntry, error) {
					value, err := strconv.Atoi(rest[0])
					if err != nil {
						return cardshelf.InventoryEntry{}, fmt.Errorf("parsing value: %w", err)
					}
					return cl.Set(id, c, value)
				})
		},
	}

	cmd.Flags().StringVar(&counter, "counter", string(cardshelf.CounterOwned), "owned or wishlist")

	return cmd
}

func runCounterCmd(cmd *cobra.Command, counter string, cardID string, rest []string, fn counterCmd) error {
	c, err := cardshelf.ParseCounter(counter)
	if err != nil {
		return err
	}

	cl, err := openClient(cmd.Context())
	if err != nil {
		return err
	}
	defer cl.Close()

	card, err := cl.Card(cmd.Context(), cardID)
	if err != nil {
		return fmt.Errorf("getting card: %w", err)
	}

	entry, err := fn(cl, card.ID, c, rest)
	if err != nil {
		return err
	}
	return printEntry(cmd, entry)
}

func printEntry(cmd *cobra.Command, e cardshelf.InventoryEntry) error {
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), e)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: owned %d, wishlist %d\n", e.CardID, e.Owned, e.Wishlist)
	return err
}
