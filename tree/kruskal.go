// SPDX-License-Identifier: MIT

package tree

import (
	"math/rand"
	"sort"

	"github.com/katalvlaran/redistrict/core"
)

// RandomMST draws a spanning tree of sub as the minimum spanning tree under
// independent uniform edge weights (Kruskal with a disjoint-set forest).
//
// Steps:
//  1. Collect each local edge once (a < b) and give it a weight from rng.
//  2. Sort edges by ascending weight; SliceStable keeps ties in edge order.
//  3. Union endpoints in different sets (path compression, union by rank)
//     until Len()-1 edges are taken.
//  4. Fewer edges than Len()-1 means sub is disconnected.
//
// The distribution is not uniform over spanning trees.
//
// Complexity: O(E log E + α(V)·E). Memory: O(E + V).
func RandomMST(sub *core.Subgraph, rng *rand.Rand) (*SpanningTree, error) {
	n := sub.Len()
	if n == 0 {
		return nil, ErrDisconnectedSubgraph
	}

	type weighted struct {
		a, b int
		w    float64
	}
	var edges []weighted
	for a := 0; a < n; a++ {
		for _, b := range sub.Neighbors(a) {
			if a < b {
				edges = append(edges, weighted{a: a, b: b, w: rng.Float64()})
			}
		}
	}
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].w < edges[j].w })

	parent := make([]int, n)
	rank := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	find := func(u int) int {
		for parent[u] != u {
			parent[u] = parent[parent[u]]
			u = parent[u]
		}

		return u
	}

	t := newTree(sub)
	taken := 0
	for _, e := range edges {
		if taken == n-1 {
			break
		}
		ra, rb := find(e.a), find(e.b)
		if ra == rb {
			continue
		}
		switch {
		case rank[ra] < rank[rb]:
			parent[ra] = rb
		case rank[ra] > rank[rb]:
			parent[rb] = ra
		default:
			parent[rb] = ra
			rank[ra]++
		}
		t.link(e.a, e.b)
		taken++
	}
	if taken < n-1 {
		return nil, ErrDisconnectedSubgraph
	}

	return t, nil
}
