package dataset

import (
	"context"

	"github.com/horockey/cardshelf/internal/model"
)

// Source provides the full card dataset.
type Source interface {
	Name() string
	Load(ctx context.Context) (model.Bundle, error)
}
