package presenter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/horockey/cardshelf/internal/inventory"
	"github.com/horockey/cardshelf/internal/model"
	"github.com/samber/lo"
)

type Ownership string

const (
	OwnershipAll      Ownership = "all"
	OwnershipOwned    Ownership = "owned"
	OwnershipMissing  Ownership = "missing"
	OwnershipWishlist Ownership = "wishlist"
)

var ownershipCycle = []Ownership{OwnershipAll, OwnershipOwned, OwnershipMissing, OwnershipWishlist}

func ParseOwnership(s string) (Ownership, error) {
	if s == "" {
		return OwnershipAll, nil
	}
	o := Ownership(strings.ToLower(s))
	if !slices.Contains(ownershipCycle, o) {
		return "", fmt.Errorf("unknown ownership filter: %q", s)
	}
	return o, nil
}

// Next returns the following ownership filter, wrapping around.
func (o Ownership) Next() Ownership {
	idx := slices.Index(ownershipCycle, o)
	return ownershipCycle[(idx+1)%len(ownershipCycle)]
}

// Filters are the user-controlled inputs narrowing the loaded cards.
// Zero value lets everything through.
type Filters struct {
	SearchText string    `json:"searchText"`
	Rarity     string    `json:"rarity"`
	Colors     []string  `json:"colors"`
	Ownership  Ownership `json:"ownership"`
}

// Row is a displayable card along with its inventory counters.
type Row struct {
	Card  model.Card           `json:"card"`
	Entry model.InventoryEntry `json:"inventory"`
}

func MatchesSearch(c model.Card, text string) bool {
	text = model.Fold(strings.TrimSpace(text))
	if text == "" {
		return true
	}
	return strings.Contains(model.Fold(c.Title), text) ||
		strings.Contains(model.Fold(c.CardCode), text)
}

func MatchesRarity(c model.Card, rarity string) bool {
	rarity = strings.TrimSpace(rarity)
	return rarity == "" || strings.EqualFold(c.Rarity, rarity)
}

// MatchesColors reports whether card color is in the set. Colorless cards pass only an empty set.
func MatchesColors(c model.Card, colors []string) bool {
	if len(colors) == 0 {
		return true
	}
	color := c.ColorName()
	if color == "" {
		return false
	}
	return lo.ContainsBy(colors, func(el string) bool {
		return strings.EqualFold(el, color)
	})
}

func MatchesOwnership(e model.InventoryEntry, o Ownership) bool {
	switch o {
	case OwnershipOwned:
		return e.Owned > 0
	case OwnershipMissing:
		return e.Owned == 0
	case OwnershipWishlist:
		return e.Wishlist > 0
	default:
		return true
	}
}

// Apply keeps input order.
func Apply(cards []model.Card, f Filters, snap inventory.Snapshot) []Row {
	res := make([]Row, 0, len(cards))
	for _, c := range cards {
		entry := snap.Get(c.ID)
		if !MatchesSearch(c, f.SearchText) ||
			!MatchesRarity(c, f.Rarity) ||
			!MatchesColors(c, f.Colors) ||
			!MatchesOwnership(entry, f.Ownership) {
			continue
		}
		res = append(res, Row{Card: c, Entry: entry})
	}
	return res
}

func AvailableRarities(cards []model.Card) []string {
	res := lo.Uniq(lo.FilterMap(cards, func(c model.Card, _ int) (string, bool) {
		return c.Rarity, c.Rarity != ""
	}))
	slices.Sort(res)
	return res
}

func AvailableColors(cards []model.Card) []string {
	res := lo.Uniq(lo.FilterMap(cards, func(c model.Card, _ int) (string, bool) {
		return strings.ToUpper(c.ColorName()), c.ColorName() != ""
	}))
	slices.Sort(res)
	return res
}

// normalizeColors upper-cases, dedupes and sorts the color set.
func normalizeColors(colors []string) []string {
	res := lo.Uniq(lo.FilterMap(colors, func(c string, _ int) (string, bool) {
		c = strings.ToUpper(strings.TrimSpace(c))
		return c, c != ""
	}))
	slices.Sort(res)
	return res
}
