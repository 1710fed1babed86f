package cards

import (
	"context"

	"github.com/horockey/cardshelf/internal/model"
)

type Repository interface {
	model.MetricsProvider
	ListSeries(ctx context.Context) ([]model.Series, error)
	CardsBySeries(ctx context.Context, seriesID string, page int) (model.Page[model.Card], error)
	Search(ctx context.Context, keyword string, page int) (model.Page[model.Card], error)
	Card(ctx context.Context, id string) (model.Card, error)
	AllCards(ctx context.Context) ([]model.Card, error)
	Reload(ctx context.Context) error
}
