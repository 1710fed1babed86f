package model

import "fmt"

type Counter string

const (
	CounterOwned    Counter = "owned"
	CounterWishlist Counter = "wishlist"
)

func ParseCounter(s string) (Counter, error) {
	switch Counter(s) {
	case CounterOwned, CounterWishlist:
		return Counter(s), nil
	default:
		return "", fmt.Errorf("unknown counter: %q", s)
	}
}

// InventoryEntry holds per-card counters. Both are never negative.
type InventoryEntry struct {
	CardID   string `json:"cardId"`
	Owned    int    `json:"owned"`
	Wishlist int    `json:"wishlist"`
}

func (e InventoryEntry) IsEmpty() bool {
	return e.Owned == 0 && e.Wishlist == 0
}

func (e InventoryEntry) Value(c Counter) int {
	if c == CounterWishlist {
		return e.Wishlist
	}
	return e.Owned
}

func (e InventoryEntry) With(c Counter, v int) InventoryEntry {
	if c == CounterWishlist {
		e.Wishlist = v
	} else {
		e.Owned = v
	}
	return e
}
