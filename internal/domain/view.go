package domain

import (
	"fmt"
	"sort"
)

// Order selects how a review list is sorted for display.
type Order string

const (
	OrderNewest Order = "newest"
	OrderOldest Order = "oldest"
	OrderBest   Order = "best"
)

// ParseOrder maps a query value to an Order. Empty means newest.
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case "", OrderNewest:
		return OrderNewest, nil
	case OrderOldest:
		return OrderOldest, nil
	case OrderBest:
		return OrderBest, nil
	}
	return "", fmt.Errorf("unknown order %q", s)
}

// View is a filter plus sort applied to a review list before display.
type View struct {
	// Stars keeps only reviews whose truncated rating matches. 0 keeps all.
	Stars int
	Order Order
}

// Validate checks the star filter range.
func (v View) Validate() error {
	if v.Stars < 0 || v.Stars > MaxRating {
		return fmt.Errorf("star filter must be between 0 and %d", MaxRating)
	}
	return nil
}

// Apply returns a filtered, sorted copy of list. The sort is stable, so
// equal keys keep their stored (newest first) order.
func (v View) Apply(list []Review) []Review {
	out := make([]Review, 0, len(list))
	for i := range list {
		if v.Stars == 0 || list[i].Stars() == v.Stars {
			out = append(out, list[i])
		}
	}

	switch v.Order {
	case OrderOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].ParsedDate().Before(out[j].ParsedDate())
		})
	case OrderBest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Rating > out[j].Rating
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].ParsedDate().After(out[j].ParsedDate())
		})
	}
	return out
}
