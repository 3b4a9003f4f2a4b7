package main

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestShuffleIsPermutation(t *testing.T) {
	rng := testRand(1)
	for n := range 12 {
		in := make([]int, n)
		for i := range in {
			in[i] = i % 4
		}
		orig := slices.Clone(in)

		out := Shuffle(rng, in)

		require.Len(t, out, n)
		assert.Equal(t, orig, in, "input must not be modified")
		sortedOut := slices.Clone(out)
		slices.Sort(sortedOut)
		sortedIn := slices.Clone(in)
		slices.Sort(sortedIn)
		assert.Equal(t, sortedIn, sortedOut, "n=%d", n)
	}
}

func TestShuffleSmallInputs(t *testing.T) {
	rng := testRand(2)

	assert.Empty(t, Shuffle(rng, []string{}))
	assert.Empty(t, Shuffle[string](rng, nil))
	assert.Equal(t, []string{"A"}, Shuffle(rng, []string{"A"}))
}

func TestShuffleReturnsCopy(t *testing.T) {
	in := []string{"A", "B", "C"}
	out := Shuffle(testRand(3), in)
	out[0] = "Z"
	assert.Equal(t, []string{"A", "B", "C"}, in)
}

func TestShuffleDeterministicWithSeed(t *testing.T) {
	in := strings.Split("ABCDEFGH", "")
	assert.Equal(t, Shuffle(testRand(42), in), Shuffle(testRand(42), in))
}

func TestShuffleCoversAllPermutations(t *testing.T) {
	rng := testRand(7)
	in := []string{"A", "B", "C"}
	counts := map[string]int{}
	const runs = 6000
	for range runs {
		counts[strings.Join(Shuffle(rng, in), "")]++
	}

	require.Len(t, counts, 6)
	for perm, n := range counts {
		// Expected 1000 each; the bound is several standard deviations wide.
		assert.InDelta(t, runs/6, n, 200, "permutation %s", perm)
	}
}
