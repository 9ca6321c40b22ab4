package common

import (
	"slices"

	"github.com/maruel/natural"
)

// CompareNatural orders strings so that embedded numbers compare by value ("frame2" < "frame10").
func CompareNatural(a, b string) int {
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	default:
		return 0
	}
}

// SortNatural stably sorts keys in natural order, in place.
func SortNatural(keys []string) {
	slices.SortStableFunc(keys, CompareNatural)
}
