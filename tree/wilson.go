// SPDX-License-Identifier: MIT

package tree

import (
	"math/rand"

	"github.com/katalvlaran/redistrict/core"
)

// Wilson draws a uniformly random spanning tree of sub using Wilson's
// algorithm (loop-erased random walks).
//
// Steps:
//  1. Reject an empty or disconnected subgraph with ErrDisconnectedSubgraph;
//     the walk would never terminate on it.
//  2. Mark a random root as the initial tree.
//  3. For every node not yet in the tree, random-walk until the tree is hit,
//     remembering only the last exit from each visited node (next[u]). Loops
//     are erased implicitly because a revisit overwrites next[u].
//  4. Retrace the walk from its start along next[], adding each node and
//     its edge to the tree.
//
// Every spanning tree of sub is returned with equal probability.
//
// Complexity: expected O(mean hitting time); O(V+E) for the connectivity check.
func Wilson(sub *core.Subgraph, rng *rand.Rand) (*SpanningTree, error) {
	n := sub.Len()
	if !sub.Connected() {
		return nil, ErrDisconnectedSubgraph
	}

	t := newTree(sub)
	inTree := make([]bool, n)
	next := make([]int, n)
	inTree[rng.Intn(n)] = true

	for start := 0; start < n; start++ {
		u := start
		for !inTree[u] {
			nb := sub.Neighbors(u)
			next[u] = nb[rng.Intn(len(nb))]
			u = next[u]
		}
		for u = start; !inTree[u]; u = next[u] {
			inTree[u] = true
			t.link(u, next[u])
		}
	}

	return t, nil
}
