// SPDX-License-Identifier: MIT

package tree

import "math/rand"

type candidate struct {
	node    int
	subtree bool // the subtree below node is the side component
}

// FindBalancedCut searches t for a tree edge whose removal leaves one
// component with population in side and the other in rest, and returns one
// such cut chosen uniformly among all that qualify. ok is false when no edge
// qualifies or the tree has fewer than two nodes.
//
// Steps:
//  1. Root the tree at a random node and order nodes breadth-first.
//  2. Accumulate subtree populations in reverse order.
//  3. For every non-root node v, the edge (v, parent(v)) splits the tree into
//     subtree(v) and its complement; keep it if either orientation fits.
//  4. Pick one candidate with rng and materialize its side component.
//
// Complexity: O(V) time and memory.
func FindBalancedCut(t *SpanningTree, side, rest Bounds, rng *rand.Rand) (Cut, bool) {
	n := t.Len()
	if n < 2 {
		return Cut{}, false
	}

	order, parent := t.bfs(rng.Intn(n))
	subPop := make([]int64, n)
	for i := n - 1; i >= 0; i-- {
		v := order[i]
		subPop[v] += t.sub.Population(v)
		if p := parent[v]; p >= 0 {
			subPop[p] += subPop[v]
		}
	}
	total := t.sub.TotalPopulation()

	var cands []candidate
	for _, v := range order[1:] {
		below, above := subPop[v], total-subPop[v]
		switch {
		case side.Contains(below) && rest.Contains(above):
			cands = append(cands, candidate{node: v, subtree: true})
		case side.Contains(above) && rest.Contains(below):
			cands = append(cands, candidate{node: v, subtree: false})
		}
	}
	if len(cands) == 0 {
		return Cut{}, false
	}

	c := cands[rng.Intn(len(cands))]
	inSub := make([]bool, n)
	stack := []int{c.node}
	inSub[c.node] = true
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, w := range t.adj[u] {
			if w != parent[u] && !inSub[w] {
				inSub[w] = true
				stack = append(stack, w)
			}
		}
	}

	cut := Cut{Edge: [2]int{c.node, parent[c.node]}}
	for v := 0; v < n; v++ {
		if inSub[v] == c.subtree {
			cut.Side = append(cut.Side, v)
		}
	}
	if c.subtree {
		cut.Population = subPop[c.node]
	} else {
		cut.Population = total - subPop[c.node]
	}

	return cut, true
}
