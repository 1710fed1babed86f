package model

import "github.com/samber/lo"

// Series is a named card set identified by its set code and release year.
type Series struct {
	ID          string `json:"id"          validate:"required"`
	Name        string `json:"name"        validate:"required"`
	SetCode     string `json:"setCode"     validate:"required"`
	ReleaseYear int    `json:"releaseYear" validate:"gte=0"`
}

// Card is a single catalogue entry belonging to exactly one series.
type Card struct {
	ID          string  `json:"id"                 validate:"required"`
	SeriesID    string  `json:"seriesId"           validate:"required"`
	CardCode    string  `json:"cardCode"           validate:"required"`
	Title       string  `json:"title"              validate:"required"`
	Rarity      string  `json:"rarity"`
	Description string  `json:"description"`
	Color       *string `json:"color,omitempty"`
	Level       *int    `json:"level,omitempty"`
	Cost        *int    `json:"cost,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
}

// ColorName returns card color or empty string for colorless cards.
func (c Card) ColorName() string {
	if c.Color == nil {
		return ""
	}
	return *c.Color
}

// Clone copies card together with its optional fields.
func (c Card) Clone() Card {
	c.Color = clonePtr(c.Color)
	c.Level = clonePtr(c.Level)
	c.Cost = clonePtr(c.Cost)
	c.ImageURL = clonePtr(c.ImageURL)
	return c
}

func CloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	return lo.Map(cards, func(c Card, _ int) Card { return c.Clone() })
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	return lo.ToPtr(*p)
}

// Bundle is the cards.json document.
type Bundle struct {
	Series []Series `json:"series" validate:"dive"`
	Cards  []Card   `json:"cards"  validate:"dive"`
}
