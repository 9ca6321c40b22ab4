// Package lod selects progressively denser subsets of an ordered item list.
//
// A Sampler starts from an evenly strided selection and refines it by inserting the
// integer midpoint between every pair of adjacent selected indices. Every refinement
// is a superset of the one it came from, so anything fetched for a coarser level stays
// valid after refining.
package lod

import (
	"iter"
	"math"
	"slices"
)

// Sampler is a midpoint-bisection level-of-detail index sampler over items of type T.
type Sampler[T any] interface {
	// Initialize recomputes the index set from scratch by even striding over the items.
	// The cursor is rewound. Call after Push.
	Initialize()

	// NextLOD returns a new sampler over the same items with a denser index set.
	// The receiver is left unchanged.
	//
	// Returns:
	//   - Sampler[T]: the refined sampler, nil when saturated
	//   - bool: false when the sampler is already saturated
	NextLOD() (Sampler[T], bool)

	// LODs enumerates the size of every level reachable from the current state,
	// starting with the current one. Empty when there are no items.
	//
	// Returns:
	//   - []int: index-set sizes in refinement order
	LODs() []int

	// IsSaturated reports whether every item is selected.
	IsSaturated() bool

	// Len returns the number of selected indices.
	Len() int

	// Indices returns a copy of the selected indices in ascending order.
	Indices() []int

	// Items returns the backing item list. Callers must not mutate it.
	Items() []T

	// Next yields the item at the cursor and advances it.
	//
	// Returns:
	//   - T: the selected item
	//   - bool: false when the cursor is exhausted
	Next() (T, bool)

	// Rewind resets the cursor to the first selected index.
	Rewind()

	// Values iterates the selected items without touching the cursor.
	Values() iter.Seq[T]

	// Push appends an item without touching the index set.
	Push(item T)

	// SetItems replaces the backing list and reinitializes.
	SetItems(items []T)

	// Clear empties both the items and the index set.
	Clear()

	// Clone returns an independent copy including the cursor.
	Clone() Sampler[T]
}

// midpointSampler is the implementation of the Sampler interface.
type midpointSampler[T any] struct {
	items   []T
	indices []int
	cursor  int
	target  int
}

var _ Sampler[string] = &midpointSampler[string]{}

// NewSampler creates a sampler over items whose first level holds roughly targetCount entries.
// The last item is always selected. An empty items list yields an empty sampler.
//
// Parameters:
//   - items: the full-resolution ordered source list
//   - targetCount: requested size of the first level; values below 2 select only the ends
//
// Returns:
//   - Sampler[T]: the initialized sampler
func NewSampler[T any](items []T, targetCount int) Sampler[T] {
	s := &midpointSampler[T]{
		items:  items,
		target: targetCount,
	}
	s.Initialize()
	return s
}

func (s *midpointSampler[T]) Initialize() {
	s.cursor = 0
	s.indices = initialIndices(len(s.items), s.target)
}

// initialIndices strides evenly over n items. step = round(n / max(target-1, 1)), at least 1.
func initialIndices(n, target int) []int {
	if n == 0 {
		return nil
	}
	step := int(math.Round(float64(n) / float64(max(target-1, 1))))
	step = max(step, 1)

	indices := make([]int, 0, n/step+2)
	for i := 0; i < n; i += step {
		indices = append(indices, i)
	}
	if indices[len(indices)-1] != n-1 {
		indices = append(indices, n-1)
	}
	return indices
}

func (s *midpointSampler[T]) NextLOD() (Sampler[T], bool) {
	if s.IsSaturated() {
		return nil, false
	}

	refined := make([]int, 0, len(s.indices)*2)
	for i, a := range s.indices {
		refined = append(refined, a)
		if i+1 == len(s.indices) {
			break
		}
		b := s.indices[i+1]
		mid := (a + b) / 2
		if mid != a && mid != b {
			refined = append(refined, mid)
		}
	}

	// clipped so a Push on either sampler cannot write into the other's items
	next := &midpointSampler[T]{
		items:   slices.Clip(s.items),
		indices: refined,
		target:  s.target,
	}
	// keep pointing at the same underlying item
	if s.cursor >= len(s.indices) {
		next.cursor = len(refined)
	} else {
		next.cursor, _ = slices.BinarySearch(refined, s.indices[s.cursor])
	}
	return next, true
}

func (s *midpointSampler[T]) LODs() []int {
	if len(s.items) == 0 {
		return nil
	}
	sizes := []int{len(s.indices)}
	var cur Sampler[T] = s
	for {
		next, ok := cur.NextLOD()
		if !ok {
			return sizes
		}
		sizes = append(sizes, next.Len())
		cur = next
	}
}

func (s *midpointSampler[T]) IsSaturated() bool {
	return len(s.indices) == len(s.items)
}

func (s *midpointSampler[T]) Len() int {
	return len(s.indices)
}

func (s *midpointSampler[T]) Indices() []int {
	return slices.Clone(s.indices)
}

func (s *midpointSampler[T]) Items() []T {
	return s.items
}

func (s *midpointSampler[T]) Next() (T, bool) {
	var zero T
	if s.cursor >= len(s.indices) {
		return zero, false
	}
	item := s.items[s.indices[s.cursor]]
	s.cursor++
	return item, true
}

func (s *midpointSampler[T]) Rewind() {
	s.cursor = 0
}

func (s *midpointSampler[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, idx := range s.indices {
			if !yield(s.items[idx]) {
				return
			}
		}
	}
}

func (s *midpointSampler[T]) Push(item T) {
	s.items = append(s.items, item)
}

func (s *midpointSampler[T]) SetItems(items []T) {
	s.items = items
	s.Initialize()
}

func (s *midpointSampler[T]) Clear() {
	s.items = nil
	s.indices = nil
	s.cursor = 0
}

func (s *midpointSampler[T]) Clone() Sampler[T] {
	return &midpointSampler[T]{
		items:   slices.Clone(s.items),
		indices: slices.Clone(s.indices),
		cursor:  s.cursor,
		target:  s.target,
	}
}
