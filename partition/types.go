// SPDX-License-Identifier: MIT

// Package partition holds the assignment of graph nodes to parts together
// with incrementally maintained updaters: population per part, per-part
// member lists, the cut-edge set and per-pair cut-edge counts.
//
// A Partition is a value: Flip and Assign return a new Partition linked to
// its parent and leave the receiver untouched, so a rejected proposal simply
// drops the candidate. Only the parts and edges touched by a move are
// recomputed; Verify performs the from-scratch recomputation for tests and
// debugging.
//
// A Partition is not safe for concurrent mutation, but since it is never
// mutated after construction it may be read from several goroutines.
package partition

import (
	"errors"

	"github.com/katalvlaran/redistrict/core"
)

// Sentinel errors for partition construction and moves.
var (
	// ErrInvalidAssignment indicates an assignment slice of the wrong length or
	// a part id outside [0,k).
	ErrInvalidAssignment = errors.New("partition: invalid assignment")

	// ErrEmptyPart indicates a part without members.
	ErrEmptyPart = errors.New("partition: empty part")

	// ErrCorrupted indicates that a cached updater differs from its full recomputation.
	ErrCorrupted = errors.New("partition: cached updater mismatch")

	// ErrNotContiguous indicates a part whose induced subgraph is disconnected.
	ErrNotContiguous = errors.New("partition: part is not contiguous")
)

// Move reassigns Node to Part.
type Move struct {
	Node, Part int
}

// Pair is an unordered pair of part ids stored with A < B.
type Pair struct {
	A, B int
}

// PairOf returns the canonical Pair for parts a and b.
func PairOf(a, b int) Pair {
	if a > b {
		a, b = b, a
	}

	return Pair{A: a, B: b}
}

// Partition is an immutable assignment of every node of a Graph to one of K parts.
type Partition struct {
	g      *core.Graph
	k      int
	assign []int

	// updaters
	pop      []int64
	members  [][]int // ascending node indices per part
	cut      []bool  // per edge index
	cutCount int
	pairs    map[Pair]int // cut edges between each adjacent pair of parts

	parent *Partition
	moved  []int // nodes whose part differs from parent, ascending
}

// Graph returns the underlying graph.
func (p *Partition) Graph() *core.Graph { return p.g }

// K returns the number of parts.
func (p *Partition) K() int { return p.k }

// Part returns the part of node.
// Complexity: O(1).
func (p *Partition) Part(node int) int { return p.assign[node] }

// Assignment returns a copy of the node → part mapping.
// Complexity: O(V).
func (p *Partition) Assignment() []int {
	return append([]int(nil), p.assign...)
}

// Population returns the cached population of part.
// Complexity: O(1).
func (p *Partition) Population(part int) int64 { return p.pop[part] }

// Populations returns a copy of the population-per-part vector.
// Complexity: O(K).
func (p *Partition) Populations() []int64 {
	return append([]int64(nil), p.pop...)
}

// Members returns the ascending nodes of part. The slice is shared and must
// not be modified.
// Complexity: O(1).
func (p *Partition) Members(part int) []int { return p.members[part] }

// CutEdgeCount returns the size of the cached cut-edge set.
// Complexity: O(1).
func (p *Partition) CutEdgeCount() int { return p.cutCount }

// IsCut reports whether edge index e is a cut edge.
// Complexity: O(1).
func (p *Partition) IsCut(e int) bool { return p.cut[e] }

// CutEdges returns the ascending edge indices of the cut-edge set.
// Complexity: O(E).
func (p *Partition) CutEdges() []int {
	out := make([]int, 0, p.cutCount)
	for e, c := range p.cut {
		if c {
			out = append(out, e)
		}
	}

	return out
}

// PairCutCount returns the number of cut edges between parts a and b.
// Complexity: O(1).
func (p *Partition) PairCutCount(a, b int) int { return p.pairs[PairOf(a, b)] }

// Parent returns the Partition this one was derived from, or nil for an
// initial Partition.
func (p *Partition) Parent() *Partition { return p.parent }

// Moved returns the nodes whose part changed relative to Parent. The slice is
// shared and must not be modified.
func (p *Partition) Moved() []int { return p.moved }
