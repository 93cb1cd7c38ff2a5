// SPDX-License-Identifier: MIT

package tree

import (
	"math/rand"

	"github.com/katalvlaran/redistrict/core"
)

// Bipartition repeatedly samples a spanning tree of sub with method and
// searches it for a balanced cut, up to attempts times (at least once).
//
// It returns the first cut found with ok=true, or ok=false when every attempt
// failed. An error is returned only when sampling fails, which for a
// connected sub never happens.
func Bipartition(sub *core.Subgraph, side, rest Bounds, method Method, attempts int, rng *rand.Rand) (Cut, bool, error) {
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		t, err := method.Sample(sub, rng)
		if err != nil {
			return Cut{}, false, err
		}
		if cut, ok := FindBalancedCut(t, side, rest, rng); ok {
			return cut, true, nil
		}
	}

	return Cut{}, false, nil
}
