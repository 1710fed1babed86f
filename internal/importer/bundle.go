package importer

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/horockey/cardshelf/internal/model"
)

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// SlugifyCode turns a set or card code into an id: "DDD/S97-001" -> "ddd-s97-001".
func SlugifyCode(code string) string {
	return strings.Trim(nonSlugRe.ReplaceAllString(strings.ToLower(code), "-"), "-")
}

// MergeBundles concatenates bundles dropping repeated series (by id)
// and cards (by id and code). Cards are ordered by series, then code.
func MergeBundles(bundles ...model.Bundle) model.Bundle {
	type cardKey struct {
		id   string
		code string
	}

	res := model.Bundle{
		Series: []model.Series{},
		Cards:  []model.Card{},
	}
	seenSeries := map[string]struct{}{}
	seenCards := map[cardKey]struct{}{}

	for _, b := range bundles {
		for _, s := range b.Series {
			if _, found := seenSeries[s.ID]; found {
				continue
			}
			seenSeries[s.ID] = struct{}{}
			res.Series = append(res.Series, s)
		}
		for _, c := range b.Cards {
			key := cardKey{id: c.ID, code: c.CardCode}
			if _, found := seenCards[key]; found {
				continue
			}
			seenCards[key] = struct{}{}
			res.Cards = append(res.Cards, c)
		}
	}

	slices.SortStableFunc(res.Cards, func(a, b model.Card) int {
		return cmp.Or(
			cmp.Compare(a.SeriesID, b.SeriesID),
			cmp.Compare(a.CardCode, b.CardCode),
		)
	})

	return res
}

// WriteBundle encodes bundle as cards.json. Non-ASCII text is kept as is.
func WriteBundle(w io.Writer, b model.Bundle, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encoding bundle: %w", err)
	}
	return nil
}

// WriteBundleFile writes bundle to path creating parent directories.
func WriteBundleFile(path string, b model.Bundle, pretty bool) (resErr error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && resErr == nil {
			resErr = fmt.Errorf("closing output file: %w", err)
		}
	}()

	return WriteBundle(f, b, pretty)
}

type offlineBundle struct {
	Series *model.Series `json:"series"`
	Cards  []model.Card  `json:"cards"`
}

// LoadOffline reads <dir>/<setcode>.json holding a single series object and its cards.
func LoadOffline(dir string, setCode string) (model.Bundle, error) {
	path := filepath.Join(dir, strings.ToLower(setCode)+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return model.Bundle{}, fmt.Errorf("reading offline data for %s: %w", setCode, err)
	}

	var ob offlineBundle
	if err := json.Unmarshal(data, &ob); err != nil {
		return model.Bundle{}, fmt.Errorf("decoding offline data for %s: %w", setCode, err)
	}
	if ob.Series == nil {
		return model.Bundle{}, fmt.Errorf("offline data for %s is missing the series object", setCode)
	}

	if ob.Cards == nil {
		ob.Cards = []model.Card{}
	}
	return model.Bundle{
		Series: []model.Series{*ob.Series},
		Cards:  ob.Cards,
	}, nil
}
