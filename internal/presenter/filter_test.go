package presenter_test

import (
	"testing"

	"github.com/horockey/cardshelf/internal/inventory"
	"github.com/horockey/cardshelf/internal/model"
	"github.com/horockey/cardshelf/internal/presenter"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(id, title, rarity, color string) model.Card {
	c := model.Card{ID: id, SeriesID: "s", CardCode: "S/01-" + id, Title: title, Rarity: rarity}
	if color != "" {
		c.Color = lo.ToPtr(color)
	}
	return c
}

func ids(rows []presenter.Row) []string {
	return lo.Map(rows, func(r presenter.Row, _ int) string { return r.Card.ID })
}

func Test_MatchesSearch(t *testing.T) {
	c := card("001", "Wandering Mage, Frieren", "R", "BLUE")

	assert.True(t, presenter.MatchesSearch(c, ""))
	assert.True(t, presenter.MatchesSearch(c, "  frieren "))
	assert.True(t, presenter.MatchesSearch(c, "s/01-001"))
	assert.False(t, presenter.MatchesSearch(c, "fern"))
	assert.True(t, presenter.MatchesSearch(model.Card{Title: "\u212Aelvin"}, "KELVIN"))
}

func Test_MatchesRarity(t *testing.T) {
	c := card("001", "x", "SR", "")

	assert.True(t, presenter.MatchesRarity(c, ""))
	assert.True(t, presenter.MatchesRarity(c, "sr"))
	assert.False(t, presenter.MatchesRarity(c, "R"))
}

func Test_MatchesColors(t *testing.T) {
	blue := card("001", "x", "C", "BLUE")
	colorless := card("002", "y", "C", "")

	assert.True(t, presenter.MatchesColors(blue, nil))
	assert.True(t, presenter.MatchesColors(blue, []string{"red", "blue"}))
	assert.False(t, presenter.MatchesColors(blue, []string{"RED"}))
	assert.True(t, presenter.MatchesColors(colorless, nil))
	assert.False(t, presenter.MatchesColors(colorless, []string{"RED"}))
}

func Test_MatchesOwnership(t *testing.T) {
	owned := model.InventoryEntry{CardID: "a", Owned: 2}
	wished := model.InventoryEntry{CardID: "b", Wishlist: 1}

	assert.True(t, presenter.MatchesOwnership(owned, presenter.OwnershipAll))
	assert.True(t, presenter.MatchesOwnership(owned, presenter.OwnershipOwned))
	assert.False(t, presenter.MatchesOwnership(owned, presenter.OwnershipMissing))
	assert.True(t, presenter.MatchesOwnership(wished, presenter.OwnershipMissing))
	assert.True(t, presenter.MatchesOwnership(wished, presenter.OwnershipWishlist))
	assert.False(t, presenter.MatchesOwnership(owned, presenter.OwnershipWishlist))
}

func Test_Apply(t *testing.T) {
	cards := []model.Card{
		card("001", "Momo", "SR", "YELLOW"),
		card("002", "Okarun", "R", "BLUE"),
		card("003", "Momo again", "R", "RED"),
		card("004", "Aira", "R", ""),
	}
	snap := inventory.Snapshot{"003": {CardID: "003", Owned: 1}}

	assert.Equal(t, []string{"001", "002", "003", "004"}, ids(presenter.Apply(cards, presenter.Filters{}, snap)))
	assert.Equal(t, []string{"001", "003"}, ids(presenter.Apply(cards, presenter.Filters{SearchText: "momo"}, snap)))
	assert.Equal(t, []string{"003"}, ids(presenter.Apply(cards, presenter.Filters{SearchText: "momo", Rarity: "R"}, snap)))
	assert.Equal(t, []string{"002", "003"}, ids(presenter.Apply(cards, presenter.Filters{Colors: []string{"BLUE", "RED"}}, snap)))
	assert.Equal(t, []string{"003"}, ids(presenter.Apply(cards, presenter.Filters{Ownership: presenter.OwnershipOwned}, snap)))

	rows := presenter.Apply(cards, presenter.Filters{Rarity: "r", Ownership: presenter.OwnershipMissing}, snap)
	assert.Equal(t, []string{"002", "004"}, ids(rows))
	assert.Equal(t, model.InventoryEntry{CardID: "002"}, rows[0].Entry)
}

func Test_Available(t *testing.T) {
	cards := []model.Card{
		card("001", "a", "SR", "yellow"),
		card("002", "b", "C", "BLUE"),
		card("003", "c", "SR", ""),
	}

	assert.Equal(t, []string{"C", "SR"}, presenter.AvailableRarities(cards))
	assert.Equal(t, []string{"BLUE", "YELLOW"}, presenter.AvailableColors(cards))
}

func Test_Ownership(t *testing.T) {
	o, err := presenter.ParseOwnership("")
	require.NoError(t, err)
	assert.Equal(t, presenter.OwnershipAll, o)

	o, err = presenter.ParseOwnership("Wishlist")
	require.NoError(t, err)
	assert.Equal(t, presenter.OwnershipWishlist, o)
	assert.Equal(t, presenter.OwnershipAll, o.Next())

	_, err = presenter.ParseOwnership("borrowed")
	assert.Error(t, err)
}
