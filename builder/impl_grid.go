// SPDX-License-Identifier: MIT
// Package: builder
//
// impl_grid.go: implementation of Grid(rows, cols) constructor.
//
// Canonical model:
//   • 2D orthogonal grid with 4-neighborhood (right & bottom neighbors per cell),
//     the rook-adjacency shape of a block-level census grid.
//   • Unit IDs use the fixed scheme "r,c" (row-major order); cfg.idFn is not
//     consulted so coordinates stay explicit.
//
// Contract:
//   • rows ≥ 1 and cols ≥ 1 (else ErrTooFewVertices).
//   • Populations drawn from cfg.popFn(cfg.rng) in row-major order.
//   • Attrs from cfg.attrFn(r*cols+c) when set.
//
// Complexity:
//   • Time O(rows*cols), Space O(1) extra.

package builder

import (
	"fmt"

	"github.com/katalvlaran/redistrict/core"
)

const (
	methodGrid = "Grid"
	minGridDim = 1
	gridIDFmt  = "%d,%d" // "r,c"
)

// GridID returns the unit ID Grid assigns to cell (r,c).
func GridID(r, c int) string {
	return fmt.Sprintf(gridIDFmt, r, c)
}

// Grid returns a Constructor that builds a rows×cols orthogonal grid.
func Grid(rows, cols int) Constructor {
	return func(b *core.Builder, cfg builderConfig) error {
		if rows < minGridDim || cols < minGridDim {
			return fmt.Errorf("%s: rows=%d, cols=%d (each must be ≥ %d): %w",
				methodGrid, rows, cols, minGridDim, ErrTooFewVertices)
		}

		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				id := GridID(r, c)
				if err := b.AddUnit(id, cfg.popFn(cfg.rng), cfg.attrs(r*cols+c)); err != nil {
					return fmt.Errorf("%s: AddUnit(%s): %w", methodGrid, id, err)
				}
			}
		}

		// Right then Bottom for each cell; stable emission order.
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				u := GridID(r, c)
				if c+1 < cols {
					b.AddEdge(u, GridID(r, c+1))
				}
				if r+1 < rows {
					b.AddEdge(u, GridID(r+1, c))
				}
			}
		}

		return nil
	}
}
