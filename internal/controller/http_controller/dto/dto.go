package dto

import (
	"github.com/horockey/cardshelf/internal/model"
)

type SetCounter struct {
	Value *int `json:"value"`
}

type Counter struct {
	CardID  string `json:"cardId"`
	Counter string `json:"counter"`
	Value   int    `json:"value"`
}

type Series struct {
	model.Series
	CardsCount int `json:"cardsCount"`
}

func NewCounter(e model.InventoryEntry, c model.Counter) Counter {
	return Counter{
		CardID:  e.CardID,
		Counter: string(c),
		Value:   e.Value(c),
	}
}
