// SPDX-License-Identifier: MIT
// Package: builder
//
// impl_path.go - implementation of Path(n) constructor.
//
// Contract:
//   - n ≥ 1 (else ErrTooFewVertices).
//   - Units named by cfg.idFn in ascending index order; edges (i-1)-i.
//
// Complexity:
//   - Time O(n), Space O(1) extra.

package builder

import (
	"fmt"

	"github.com/katalvlaran/redistrict/core"
)

const (
	methodPath   = "Path"
	minPathNodes = 1
)

// Path returns a Constructor that builds a simple path P_n, the smallest
// graph on which every spanning tree is the graph itself.
func Path(n int) Constructor {
	return func(b *core.Builder, cfg builderConfig) error {
		if n < minPathNodes {
			return fmt.Errorf("%s: n=%d < min=%d: %w", methodPath, n, minPathNodes, ErrTooFewVertices)
		}

		for i := 0; i < n; i++ {
			id := cfg.idFn(i)
			if err := b.AddUnit(id, cfg.popFn(cfg.rng), cfg.attrs(i)); err != nil {
				return fmt.Errorf("%s: AddUnit(%s): %w", methodPath, id, err)
			}
		}
		for i := 1; i < n; i++ {
			b.AddEdge(cfg.idFn(i-1), cfg.idFn(i))
		}

		return nil
	}
}
