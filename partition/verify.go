// SPDX-License-Identifier: MIT
//
// File: verify.go
// Role: From-scratch recomputation of every updater. Used by New once and by
// Verify / VerifyContiguity for tests and debug runs; never on the hot path.

package partition

import (
	"fmt"
	"slices"

	"github.com/katalvlaran/redistrict/core"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// recompute derives all updater values from g and assign in one pass over
// nodes and one over edges.
func recompute(g *core.Graph, assign []int, k int) (pop []int64, members [][]int, cut []bool, cutCount int, pairs map[Pair]int) {
	pop = make([]int64, k)
	members = make([][]int, k)
	for v, part := range assign {
		pop[part] += g.Population(v)
		members[part] = append(members[part], v)
	}
	cut = make([]bool, g.EdgeCount())
	pairs = make(map[Pair]int)
	for e, edge := range g.Edges() {
		a, b := assign[edge.U], assign[edge.V]
		if a != b {
			cut[e] = true
			cutCount++
			pairs[PairOf(a, b)]++
		}
	}

	return pop, members, cut, cutCount, pairs
}

// Verify recomputes every updater from the graph and the assignment and
// compares it with the cached value. It returns an error wrapping
// ErrCorrupted describing the first mismatch, or nil.
//
// Complexity: O(V + E).
func (p *Partition) Verify() error {
	pop, members, cut, cutCount, pairs := recompute(p.g, p.assign, p.k)

	for part := 0; part < p.k; part++ {
		if pop[part] != p.pop[part] {
			return fmt.Errorf("partition: population of part %d cached %d, recomputed %d: %w",
				part, p.pop[part], pop[part], ErrCorrupted)
		}
		if !slices.Equal(members[part], p.members[part]) {
			return fmt.Errorf("partition: members of part %d differ: %w", part, ErrCorrupted)
		}
	}
	if cutCount != p.cutCount {
		return fmt.Errorf("partition: cut-edge count cached %d, recomputed %d: %w",
			p.cutCount, cutCount, ErrCorrupted)
	}
	for e := range cut {
		if cut[e] != p.cut[e] {
			edge := p.g.Edge(e)
			return fmt.Errorf("partition: cut flag of edge %s-%s cached %t: %w",
				p.g.ID(edge.U), p.g.ID(edge.V), p.cut[e], ErrCorrupted)
		}
	}
	if len(pairs) != len(p.pairs) {
		return fmt.Errorf("partition: %d adjacent pairs cached, %d recomputed: %w",
			len(p.pairs), len(pairs), ErrCorrupted)
	}
	for key, n := range pairs {
		if p.pairs[key] != n {
			return fmt.Errorf("partition: pair %v cut count cached %d, recomputed %d: %w",
				key, p.pairs[key], n, ErrCorrupted)
		}
	}

	return nil
}

// VerifyContiguity checks every part for connectivity using an independent
// implementation (gonum topo.ConnectedComponents) rather than the sampler's
// own breadth-first search.
//
// Complexity: O(V + E).
func (p *Partition) VerifyContiguity() error {
	graphs := make([]*simple.UndirectedGraph, p.k)
	for part := range graphs {
		graphs[part] = simple.NewUndirectedGraph()
		for _, v := range p.members[part] {
			graphs[part].AddNode(simple.Node(int64(v)))
		}
	}
	for _, edge := range p.g.Edges() {
		a := p.assign[edge.U]
		if a != p.assign[edge.V] {
			continue
		}
		graphs[a].SetEdge(simple.Edge{F: simple.Node(int64(edge.U)), T: simple.Node(int64(edge.V))})
	}
	for part, ug := range graphs {
		if comps := topo.ConnectedComponents(ug); len(comps) != 1 {
			return fmt.Errorf("partition: part %d has %d components: %w", part, len(comps), ErrNotContiguous)
		}
	}

	return nil
}
