package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/horockey/cardshelf"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}

func printTable(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func printCardsPage(w io.Writer, page cardshelf.Page[cardshelf.Card]) error {
	if jsonOutput {
		return printJSON(w, page)
	}

	rows := make([][]string, 0, len(page.Items))
	for _, c := range page.Items {
		rows = append(rows, cardRow(c))
	}
	if err := printTable(w, cardHeaders, rows); err != nil {
		return err
	}
	return printPageFooter(w, page.Index, len(page.Items), page.Total, page.HasMore)
}

func printPageFooter(w io.Writer, index, shown, total int, hasMore bool) error {
	more := ""
	if hasMore {
		more = fmt.Sprintf(", next: --page %d", index+1)
	}
	_, err := fmt.Fprintf(w, "page %d: %d of %d%s\n", index, shown, total, more)
	return err
}

var cardHeaders = []string{"ID", "Code", "Title", "Rarity", "Color", "Level", "Cost"}

func cardRow(c cardshelf.Card) []string {
	return []string{
		c.ID,
		c.CardCode,
		c.Title,
		c.Rarity,
		c.ColorName(),
		optInt(c.Level),
		optInt(c.Cost),
	}
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
