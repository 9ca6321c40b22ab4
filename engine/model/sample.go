package model

import (
	"math/rand/v2"
	"slices"
)

// SampleIndices picks n distinct vertex indices out of vertexCount, in ascending order.
// When n covers every vertex all indices are returned.
//
// Parameters:
//   - vertexCount: the number of vertices to sample from
//   - n: how many to pick
//   - rng: the random source, a time-seeded one when nil
//
// Returns:
//   - []int: the sampled indices
func SampleIndices(vertexCount, n int, rng *rand.Rand) []int {
	if vertexCount <= 0 || n <= 0 {
		return nil
	}
	if n >= vertexCount {
		out := make([]int, vertexCount)
		for i := range out {
			out[i] = i
		}
		return out
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	// Floyd's algorithm: n draws, no rejection loop
	picked := make(map[int]struct{}, n)
	for j := vertexCount - n; j < vertexCount; j++ {
		t := rng.IntN(j + 1)
		if _, ok := picked[t]; ok {
			t = j
		}
		picked[t] = struct{}{}
	}
	out := make([]int, 0, n)
	for i := range picked {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}
