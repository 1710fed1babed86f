package presenter

import (
	"slices"

	"github.com/horockey/cardshelf/internal/model"
)

// State is everything a catalogue view needs to render itself.
type State struct {
	Series           []model.Series `json:"series"`
	SelectedSeriesID string         `json:"selectedSeriesId"`
	Filters          Filters        `json:"filters"`

	// Loaded holds base cards fetched so far, before filters.
	Loaded    []model.Card `json:"-"`
	PageIndex int          `json:"pageIndex"`
	Total     int          `json:"total"`
	HasMore   bool         `json:"hasMore"`

	Rows     []Row    `json:"rows"`
	Rarities []string `json:"rarities"`
	Colors   []string `json:"colors"`

	Loading bool   `json:"loading"`
	Err     string `json:"error,omitempty"`
	Version uint64 `json:"version"`
}

// SelectedSeries returns selected series if any.
func (s State) SelectedSeries() (model.Series, bool) {
	idx := slices.IndexFunc(s.Series, func(el model.Series) bool {
		return el.ID == s.SelectedSeriesID
	})
	if idx < 0 {
		return model.Series{}, false
	}
	return s.Series[idx], true
}

func (s State) clone() State {
	s.Series = slices.Clone(s.Series)
	s.Filters.Colors = slices.Clone(s.Filters.Colors)
	s.Loaded = model.CloneCards(s.Loaded)
	s.Rows = slices.Clone(s.Rows)
	for i := range s.Rows {
		s.Rows[i].Card = s.Rows[i].Card.Clone()
	}
	s.Rarities = slices.Clone(s.Rarities)
	s.Colors = slices.Clone(s.Colors)
	return s
}
