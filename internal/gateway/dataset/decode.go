package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/horockey/cardshelf/internal/model"
	"github.com/samber/lo"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode parses cards.json document and validates its records.
func Decode(data []byte) (model.Bundle, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	bundle := model.Bundle{}
	if err := json.Unmarshal(data, &bundle); err != nil {
		return model.Bundle{}, fmt.Errorf("unmarshaling json: %w", err)
	}

	if err := Validate(bundle); err != nil {
		return model.Bundle{}, err
	}

	return bundle, nil
}

// Validate checks required fields and that every card refers to a known series.
func Validate(bundle model.Bundle) error {
	if err := validate.Struct(bundle); err != nil {
		return fmt.Errorf("validating bundle: %w", err)
	}

	seriesIDs := lo.SliceToMap(bundle.Series, func(s model.Series) (string, struct{}) {
		return s.ID, struct{}{}
	})
	if len(seriesIDs) != len(bundle.Series) {
		return fmt.Errorf("validating bundle: duplicate series ids")
	}

	for _, card := range bundle.Cards {
		if _, found := seriesIDs[card.SeriesID]; !found {
			return fmt.Errorf("validating bundle: card %s refers to unknown series %s", card.ID, card.SeriesID)
		}
	}

	return nil
}
