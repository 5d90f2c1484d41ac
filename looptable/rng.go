// RNG utilities for stochastic table construction.
//
// Goals:
//   - Determinism: same seed ⇒ identical tables, whatever order lengths are built in.
//   - Encapsulation: no time-based sources hidden anywhere; callers own the seed.
//
// Concurrency:
//   - math/rand.Rand is NOT goroutine-safe. Every table build gets its own stream.
package looptable

import "math/rand"

// defaultRNGSeed is the fixed seed used when callers pass seed==0 or a nil rng.
const defaultRNGSeed int64 = 1

// rngFromSeed returns a deterministic *rand.Rand.
// Policy: seed==0 ⇒ use defaultRNGSeed; otherwise use the provided seed verbatim.
func rngFromSeed(seed int64) *rand.Rand {
	s := seed
	if s == 0 {
		s = defaultRNGSeed
	}

	return rand.New(rand.NewSource(s))
}

// deriveSeed mixes a parent seed and a stream identifier into a new 64-bit
// seed with a SplitMix64 finalizer, so neighbouring streams are uncorrelated.
func deriveSeed(parent int64, stream uint64) int64 {
	var x uint64
	x = uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return int64(x)
}

// lengthRNG returns the stream used to build the table of chain length n.
func lengthRNG(seed int64, n int) *rand.Rand {
	if seed == 0 {
		seed = defaultRNGSeed
	}

	return rand.New(rand.NewSource(deriveSeed(seed, uint64(n))))
}
