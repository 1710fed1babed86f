package presenter

import (
	"context"
	"fmt"

	"github.com/horockey/cardshelf/internal/inventory"
	"github.com/horockey/cardshelf/internal/model"
	"github.com/horockey/cardshelf/internal/repository/cards"
)

// Evaluate runs filters over the whole base list and paginates the resulting rows.
// Blank seriesID means repository search over every card, search text is not applied twice then.
func Evaluate(
	ctx context.Context,
	repo cards.Repository,
	snap inventory.Snapshot,
	seriesID string,
	f Filters,
	page int,
	pageSize int,
) (model.Page[Row], error) {
	var (
		base []model.Card
		err  error
	)

	if seriesID == "" {
		base, err = searchCards(ctx, repo, f.SearchText)
		if err != nil {
			return model.Page[Row]{}, err
		}
		f.SearchText = ""
	} else {
		base, err = seriesCards(ctx, repo, seriesID)
		if err != nil {
			return model.Page[Row]{}, err
		}
	}

	f.Colors = normalizeColors(f.Colors)
	return model.Paginate(Apply(base, f, snap), page, pageSize)
}

func seriesCards(ctx context.Context, repo cards.Repository, seriesID string) ([]model.Card, error) {
	res := []model.Card{}
	for idx := 0; ; idx++ {
		page, err := repo.CardsBySeries(ctx, seriesID, idx)
		if err != nil {
			return nil, fmt.Errorf("getting cards of series %s: %w", seriesID, err)
		}
		res = append(res, page.Items...)
		if !page.HasMore {
			return res, nil
		}
	}
}

func searchCards(ctx context.Context, repo cards.Repository, text string) ([]model.Card, error) {
	res := []model.Card{}
	for idx := 0; ; idx++ {
		page, err := repo.Search(ctx, text, idx)
		if err != nil {
			return nil, fmt.Errorf("searching cards: %w", err)
		}
		res = append(res, page.Items...)
		if !page.HasMore {
			return res, nil
		}
	}
}
