// Package rng provides the deterministic random source behind map
// generation.
//
// A Source is created from a seed string and produces an identical draw
// sequence on every platform: the seed is hashed with SHA-256 and the
// digest seeds a PCG generator, so neither string hashing differences nor
// math/rand's global state can leak into the output. Consumers must draw
// in a fixed order - the draw sequence is the determinism contract.
package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sort"
)

// Source is a seeded deterministic random source. It is not safe for
// concurrent use; generation owns one Source per map.
type Source struct {
	seed string
	src  *rand.Rand
}

// New creates a Source from a seed string. Equal seeds yield equal draw
// sequences on any platform.
func New(seed string) *Source {
	sum := sha256.Sum256([]byte(seed))
	hi := binary.LittleEndian.Uint64(sum[0:8])
	lo := binary.LittleEndian.Uint64(sum[8:16])
	return &Source{
		seed: seed,
		src:  rand.New(rand.NewPCG(hi, lo)),
	}
}

// Seed returns the seed string the source was created with.
func (s *Source) Seed() string { return s.seed }

// IntBetween draws a uniform integer in [min, max], inclusive on both ends.
func (s *Source) IntBetween(min, max int) int {
	if min > max {
		panic(fmt.Sprintf("rng: inverted bounds [%d, %d]", min, max))
	}
	return min + s.src.IntN(max-min+1)
}

// Float64 draws a uniform float in [0, 1).
func (s *Source) Float64() float64 {
	return s.src.Float64()
}

// WeightedChoice draws an index with probability proportional to its weight.
// Weights must be non-negative with a positive sum; zero-weight entries are
// never selected. Exactly one uniform draw is consumed per call.
func (s *Source) WeightedChoice(weights []float64) int {
	cum := make([]float64, len(weights))
	total := 0.0
	for i, w := range weights {
		total += w
		cum[i] = total
	}
	if total <= 0 {
		panic("rng: weighted choice over non-positive total weight")
	}

	u := s.src.Float64() * total
	idx := sort.SearchFloat64s(cum, u)
	// A draw landing exactly on a boundary belongs to the next interval,
	// and zero-weight entries own an empty interval. Both skip forward.
	for idx < len(weights)-1 && (weights[idx] == 0 || u == cum[idx]) {
		idx++
	}
	return idx
}

// Sample draws k distinct integers from [0, n) using a partial
// Fisher-Yates shuffle. k is clamped to n. The result order is the draw
// order, not sorted.
func (s *Source) Sample(n, k int) []int {
	if k > n {
		k = n
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + s.src.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}

// Shuffle permutes xs in place.
func (s *Source) Shuffle(xs []int) {
	s.src.Shuffle(len(xs), func(i, j int) {
		xs[i], xs[j] = xs[j], xs[i]
	})
}
