// SPDX-License-Identifier: MIT
//
// File: rng.go
// Role: Deterministic per-chain random streams.
//
// Concurrency:
//   - math/rand.Rand is NOT goroutine-safe. Every chain owns its stream; never
//     share one across goroutines.

package chain

import "math/rand"

// DeriveSeed mixes a base seed and a run identifier into a new 64-bit seed
// with a SplitMix64 finalizer. Small changes in either input yield unrelated
// outputs, so consecutive run ids do not produce correlated streams. Every
// step of the mix is a bijection of x, so distinct (base, runID) inputs that
// differ only in base never collide; a zero base is as valid as any other.
//
// Complexity: O(1).
func DeriveSeed(base int64, runID uint64) int64 {
	x := uint64(base) ^ (runID + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return int64(x)
}

// NewRand returns the random stream of run runID under base seed base. It is
// a pure function of (base, runID): the same pair always yields the same
// sequence regardless of how many other chains exist.
func NewRand(base int64, runID uint64) *rand.Rand {
	return rand.New(rand.NewSource(DeriveSeed(base, runID)))
}
