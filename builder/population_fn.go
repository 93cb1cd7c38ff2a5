// SPDX-License-Identifier: MIT

package builder

import (
	"fmt"
	"math/rand"
)

// PopulationFn produces a unit population given an optional *rand.Rand.
// It must be deterministic for a given RNG state.
type PopulationFn func(rng *rand.Rand) int64

// ConstantPopulationFn returns a PopulationFn that always yields value.
// Panics if value < 1.
// Complexity: O(1).
func ConstantPopulationFn(value int64) PopulationFn {
	if value < 1 {
		panic(fmt.Sprintf("ConstantPopulationFn: value must be ≥ 1, got %d", value))
	}

	return func(_ *rand.Rand) int64 {
		return value
	}
}

// UniformPopulationFn returns a PopulationFn sampling uniformly in [min, max].
// Panics if min < 1 or max < min. With a nil rng it yields min, so unseeded
// builds stay deterministic.
// Complexity: O(1).
func UniformPopulationFn(min, max int64) PopulationFn {
	if min < 1 || max < min {
		panic(fmt.Sprintf("UniformPopulationFn: require 1 ≤ min ≤ max, got min=%d, max=%d", min, max))
	}

	return func(rng *rand.Rand) int64 {
		if rng == nil || max == min {
			return min
		}

		return min + rng.Int63n(max-min+1)
	}
}
