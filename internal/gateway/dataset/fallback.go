package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/horockey/cardshelf/internal/model"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

var _ Source = &fallback{}

type fallback struct {
	sources []Source
	logger  zerolog.Logger
}

// Fallback tries sources in order and returns the first loaded dataset.
func Fallback(logger zerolog.Logger, sources ...Source) *fallback {
	return &fallback{
		sources: lo.Filter(sources, func(s Source, _ int) bool { return s != nil }),
		logger:  logger,
	}
}

func (fb *fallback) Name() string {
	return "fallback"
}

func (fb *fallback) Load(ctx context.Context) (model.Bundle, error) {
	var resErr error

	for _, src := range fb.sources {
		if err := ctx.Err(); err != nil {
			return model.Bundle{}, fmt.Errorf("loading dataset: %w", err)
		}

		bundle, err := src.Load(ctx)
		if err != nil {
			fb.logger.
				Warn().
				Err(err).
				Str("source", src.Name()).
				Msg("dataset source failed, trying next one")
			resErr = errors.Join(resErr, fmt.Errorf("loading from %s: %w", src.Name(), err))
			continue
		}

		fb.logger.
			Debug().
			Str("source", src.Name()).
			Int("series", len(bundle.Series)).
			Int("cards", len(bundle.Cards)).
			Msg("dataset loaded")
		return bundle, nil
	}

	if resErr == nil {
		resErr = errors.New("no dataset sources configured")
	}
	return model.Bundle{}, resErr
}
