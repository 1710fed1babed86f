package cardshelf

import "github.com/horockey/cardshelf/internal/model"

type (
	ErrKeyNotFoundError    = model.KeyNotFoundError
	ErrSeriesNotFoundError = model.SeriesNotFoundError
	ErrCardNotFoundError   = model.CardNotFoundError
	InvalidPageError       = model.InvalidPageError
	InvalidCountError      = model.InvalidCountError
)
