package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/horockey/cardshelf/internal/model"
	"github.com/samber/lo"
)

var RequiredColumns = []string{
	"series_id",
	"series_name",
	"set_code",
	"release_year",
	"card_id",
	"card_code",
	"title",
	"rarity",
	"description",
	"color",
	"level",
	"cost",
	"image_url",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ImportCSV converts a flat card table into a bundle. Series are taken
// from the first row mentioning them, cards keep the row order.
func ImportCSV(r io.Reader) (model.Bundle, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	switch {
	case errors.Is(err, io.EOF):
		header = nil
	case err != nil:
		return model.Bundle{}, fmt.Errorf("reading header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.TrimSpace(col)] = i
	}

	missing := lo.Filter(RequiredColumns, func(col string, _ int) bool {
		_, found := idx[col]
		return !found
	})
	if len(missing) > 0 {
		slices.Sort(missing)
		return model.Bundle{}, fmt.Errorf("csv is missing required columns: %s", strings.Join(missing, ", "))
	}

	res := model.Bundle{
		Series: []model.Series{},
		Cards:  []model.Card{},
	}
	seenSeries := map[string]struct{}{}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.Bundle{}, fmt.Errorf("reading line %d: %w", line, err)
		}

		row := func(col string) string {
			i := idx[col]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		year, err := requiredInt(row("release_year"), "release_year")
		if err != nil {
			return model.Bundle{}, fmt.Errorf("line %d: %w", line, err)
		}
		level, err := optionalInt(row("level"))
		if err != nil {
			return model.Bundle{}, fmt.Errorf("line %d: level: %w", line, err)
		}
		cost, err := optionalInt(row("cost"))
		if err != nil {
			return model.Bundle{}, fmt.Errorf("line %d: cost: %w", line, err)
		}

		seriesID := row("series_id")
		if _, found := seenSeries[seriesID]; !found {
			seenSeries[seriesID] = struct{}{}
			res.Series = append(res.Series, model.Series{
				ID:          seriesID,
				Name:        row("series_name"),
				SetCode:     row("set_code"),
				ReleaseYear: year,
			})
		}

		res.Cards = append(res.Cards, model.Card{
			ID:          row("card_id"),
			SeriesID:    seriesID,
			CardCode:    row("card_code"),
			Title:       row("title"),
			Rarity:      row("rarity"),
			Description: row("description"),
			Color:       optionalStr(row("color")),
			Level:       level,
			Cost:        cost,
			ImageURL:    optionalStr(row("image_url")),
		})
	}

	if len(res.Cards) == 0 {
		return model.Bundle{}, errors.New("csv does not contain any data rows")
	}

	return res, nil
}

func requiredInt(v string, field string) (int, error) {
	if v == "" {
		return 0, fmt.Errorf("field %s must not be empty", field)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("field %s must be an integer (got %q)", field, v)
	}
	return n, nil
}

func optionalInt(v string) (*int, error) {
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("expected an integer, got %q", v)
	}
	return &n, nil
}

func optionalStr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
