// SPDX-License-Identifier: MIT
//
// File: builder.go
// Role: Mutable staging area that validates input and freezes it into a Graph.
// Determinism:
//   - Node indices follow AddUnit order; edges are sorted by (U,V) at Build.

package core

import (
	"fmt"
	"sort"
)

// Builder accumulates units and adjacency pairs for a Graph.
//
// AddUnit and AddEdge never fail loudly: the first problem is recorded and
// surfaced by Build, so loaders can stream records without checking every call.
// A Builder is not safe for concurrent use.
type Builder struct {
	units []GeoUnit
	index map[string]int
	pairs [][2]string
	err   error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{index: make(map[string]int)}
}

// AddUnit registers a unit. Duplicate or empty IDs and non-positive
// populations are recorded as the builder error and the unit is skipped.
// The returned error mirrors the recorded one for callers that want to stop early.
//
// Complexity: O(1) amortized.
func (b *Builder) AddUnit(id string, population int64, attrs map[string]any) error {
	var err error
	switch {
	case id == "":
		err = ErrEmptyUnitID
	case population <= 0:
		err = fmt.Errorf("core: unit %q population %d: %w", id, population, ErrBadPopulation)
	default:
		if _, dup := b.index[id]; dup {
			err = fmt.Errorf("core: unit %q: %w", id, ErrDuplicateUnit)
		}
	}
	if err != nil {
		b.record(err)
		return err
	}

	b.index[id] = len(b.units)
	b.units = append(b.units, GeoUnit{ID: id, Population: population, Attrs: attrs})

	return nil
}

// AddEdge records an undirected adjacency between two unit IDs. Endpoints are
// resolved at Build time, so edges may be added before their units.
//
// Complexity: O(1) amortized.
func (b *Builder) AddEdge(from, to string) {
	b.pairs = append(b.pairs, [2]string{from, to})
}

// Build validates the staged data and returns the frozen Graph.
//
// Implementation:
//   - Stage 1: Surface the first error recorded by AddUnit.
//   - Stage 2: Resolve every pair; reject unknown IDs and self-loops; merge duplicates.
//   - Stage 3: Sort edges, derive adjacency/incidence lists and the population total.
//   - Stage 4: Reject disconnected adjacency.
//
// Errors (all wrap ErrData):
//   - ErrNoUnits, ErrEmptyUnitID, ErrDuplicateUnit, ErrBadPopulation,
//     ErrUnknownUnit, ErrSelfLoop, ErrDisconnectedGraph.
//
// Complexity:
//   - Time O(V + E log E), Space O(V + E).
func (b *Builder) Build() (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}
	n := len(b.units)
	if n == 0 {
		return nil, ErrNoUnits
	}

	seen := make(map[Edge]struct{}, len(b.pairs))
	edges := make([]Edge, 0, len(b.pairs))
	for _, p := range b.pairs {
		u, ok := b.index[p[0]]
		if !ok {
			return nil, fmt.Errorf("core: edge %s-%s: %q: %w", p[0], p[1], p[0], ErrUnknownUnit)
		}
		v, ok := b.index[p[1]]
		if !ok {
			return nil, fmt.Errorf("core: edge %s-%s: %q: %w", p[0], p[1], p[1], ErrUnknownUnit)
		}
		if u == v {
			return nil, fmt.Errorf("core: edge %s-%s: %w", p[0], p[1], ErrSelfLoop)
		}
		if u > v {
			u, v = v, u
		}
		e := Edge{U: u, V: v}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].U != edges[j].U {
			return edges[i].U < edges[j].U
		}
		return edges[i].V < edges[j].V
	})

	g := &Graph{
		units:    append([]GeoUnit(nil), b.units...),
		index:    make(map[string]int, n),
		adj:      make([][]int, n),
		incident: make([][]int, n),
		edges:    edges,
	}
	for id, i := range b.index {
		g.index[id] = i
	}
	for _, u := range g.units {
		g.totalPop += u.Population
	}
	// edges are sorted by (U,V), so incident lists come out ascending
	for k, e := range edges {
		g.incident[e.U] = append(g.incident[e.U], k)
		g.incident[e.V] = append(g.incident[e.V], k)
		g.adj[e.U] = append(g.adj[e.U], e.V)
		g.adj[e.V] = append(g.adj[e.V], e.U)
	}
	for i := range g.adj {
		sort.Ints(g.adj[i])
	}

	if !g.Induce(allNodes(n)).Connected() {
		return nil, ErrDisconnectedGraph
	}

	return g, nil
}

func (b *Builder) record(err error) {
	if b.err == nil {
		b.err = err
	}
}

func allNodes(n int) []int {
	nodes := make([]int, n)
	for i := range nodes {
		nodes[i] = i
	}

	return nodes
}
