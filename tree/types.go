// SPDX-License-Identifier: MIT

// Package tree defines spanning-tree sampling and balanced-cut options,
// sentinel errors and the SpanningTree/Cut/Bounds types.
package tree

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/katalvlaran/redistrict/core"
)

// ErrDisconnectedSubgraph indicates that a spanning tree was requested over a
// node subset whose induced subgraph is not connected. It is a precondition
// violation: during a chain it means a part lost contiguity.
var ErrDisconnectedSubgraph = errors.New("tree: induced subgraph is disconnected")

// ErrInfeasiblePartition indicates that the recursive partitioner could not
// peel a balanced part within its attempt budget.
var ErrInfeasiblePartition = errors.New("tree: no balanced partition found")

// ErrNotATree indicates an edge list that is not a spanning tree of its subgraph.
var ErrNotATree = errors.New("tree: edges do not form a spanning tree")

// ErrInvalidParts indicates a part count below 1.
var ErrInvalidParts = errors.New("tree: part count must be at least 1")

// Method selects the spanning-tree sampler.
type Method int

const (
	// MethodWilson draws a uniform spanning tree by loop-erased random walk.
	MethodWilson Method = iota
	// MethodRandomMST draws the minimum spanning tree under i.i.d. uniform
	// edge weights (Kruskal). Faster on large regions, not uniform.
	MethodRandomMST
)

// String returns the configuration name of m.
func (m Method) String() string {
	switch m {
	case MethodWilson:
		return "wilson"
	case MethodRandomMST:
		return "random_mst"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod resolves a configuration name to a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "wilson", "":
		return MethodWilson, nil
	case "random_mst":
		return MethodRandomMST, nil
	default:
		return 0, fmt.Errorf("tree: unknown spanning-tree method %q", s)
	}
}

// Sample draws a spanning tree of sub with the selected method.
func (m Method) Sample(sub *core.Subgraph, rng *rand.Rand) (*SpanningTree, error) {
	if m == MethodRandomMST {
		return RandomMST(sub, rng)
	}

	return Wilson(sub, rng)
}

// Bounds is an inclusive population window [Lo, Hi].
type Bounds struct {
	Lo, Hi float64
}

// Around returns [target·(1−eps), target·(1+eps)].
func Around(target, eps float64) Bounds {
	return Bounds{Lo: target * (1 - eps), Hi: target * (1 + eps)}
}

// Scale multiplies both ends of b by f (the window of f parts at once).
func (b Bounds) Scale(f float64) Bounds {
	return Bounds{Lo: b.Lo * f, Hi: b.Hi * f}
}

// Contains reports whether pop lies inside b.
func (b Bounds) Contains(pop int64) bool {
	f := float64(pop)

	return f >= b.Lo && f <= b.Hi
}

// Empty reports whether the window admits no value.
func (b Bounds) Empty() bool { return b.Lo > b.Hi }

// SpanningTree is a spanning tree over the local nodes of a Subgraph. It is
// produced and consumed within one proposal attempt.
type SpanningTree struct {
	sub *core.Subgraph
	adj [][]int
}

func newTree(sub *core.Subgraph) *SpanningTree {
	return &SpanningTree{sub: sub, adj: make([][]int, sub.Len())}
}

func (t *SpanningTree) link(a, b int) {
	t.adj[a] = append(t.adj[a], b)
	t.adj[b] = append(t.adj[b], a)
}

// NewSpanningTree wraps an explicit local edge list. It returns ErrNotATree
// unless the edges are exactly Len()-1 edges of sub that connect every node.
func NewSpanningTree(sub *core.Subgraph, edges [][2]int) (*SpanningTree, error) {
	n := sub.Len()
	if n == 0 || len(edges) != n-1 {
		return nil, fmt.Errorf("tree: %d edges for %d nodes: %w", len(edges), n, ErrNotATree)
	}
	t := newTree(sub)
	for _, e := range edges {
		if e[0] < 0 || e[0] >= n || e[1] < 0 || e[1] >= n || !adjacent(sub, e[0], e[1]) {
			return nil, fmt.Errorf("tree: edge %v is not in the subgraph: %w", e, ErrNotATree)
		}
		t.link(e[0], e[1])
	}
	// n-1 edges that reach every node form a tree
	order, _ := t.bfs(0)
	if len(order) != n {
		return nil, fmt.Errorf("tree: edges leave nodes unreached: %w", ErrNotATree)
	}

	return t, nil
}

func adjacent(sub *core.Subgraph, a, b int) bool {
	for _, w := range sub.Neighbors(a) {
		if w == b {
			return true
		}
	}

	return false
}

// Subgraph returns the subgraph the tree spans.
func (t *SpanningTree) Subgraph() *core.Subgraph { return t.sub }

// Len returns the number of nodes spanned.
func (t *SpanningTree) Len() int { return len(t.adj) }

// Neighbors returns the tree neighbors of local node i.
func (t *SpanningTree) Neighbors(i int) []int { return t.adj[i] }

// Edges returns every tree edge once as (a,b) with a < b, sorted.
func (t *SpanningTree) Edges() [][2]int {
	out := make([][2]int, 0, len(t.adj))
	for a, nb := range t.adj {
		for _, b := range nb {
			if a < b {
				out = append(out, [2]int{a, b})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})

	return out
}

// bfs returns the breadth-first order from root and the parent of every
// reached node (-1 for root and unreached nodes).
func (t *SpanningTree) bfs(root int) (order, parent []int) {
	n := len(t.adj)
	parent = make([]int, n)
	for i := range parent {
		parent[i] = -1
	}
	seen := make([]bool, n)
	order = make([]int, 1, n)
	order[0] = root
	seen[root] = true
	for qi := 0; qi < len(order); qi++ {
		u := order[qi]
		for _, w := range t.adj[u] {
			if !seen[w] {
				seen[w] = true
				parent[w] = u
				order = append(order, w)
			}
		}
	}

	return order, parent
}

// Cut is a balanced split of a SpanningTree.
type Cut struct {
	// Side lists the local nodes (ascending) of the component matched to the
	// side window; the remaining nodes form the rest.
	Side []int
	// Edge is the removed tree edge as (child, parent) under the search root.
	Edge [2]int
	// Population is the summed population of Side.
	Population int64
}
