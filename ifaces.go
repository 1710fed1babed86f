package cardshelf

import (
	"context"

	"github.com/horockey/cardshelf/internal/model"
	"github.com/horockey/cardshelf/internal/presenter"
)

type (
	Presenter      = presenter.Presenter
	State          = presenter.State
	Filters        = presenter.Filters
	Row            = presenter.Row
	Ownership      = presenter.Ownership
	Series         = model.Series
	Card           = model.Card
	Bundle         = model.Bundle
	InventoryEntry = model.InventoryEntry
	Counter        = model.Counter
	Page[T any]    = model.Page[T]
)

const (
	CounterOwned    = model.CounterOwned
	CounterWishlist = model.CounterWishlist

	OwnershipAll      = presenter.OwnershipAll
	OwnershipOwned    = presenter.OwnershipOwned
	OwnershipMissing  = presenter.OwnershipMissing
	OwnershipWishlist = presenter.OwnershipWishlist
)

type Controller interface {
	model.MetricsProvider
	Start(ctx context.Context) error
}

func ParseOwnership(s string) (Ownership, error) {
	return presenter.ParseOwnership(s)
}

func ParseCounter(s string) (Counter, error) {
	return model.ParseCounter(s)
}
