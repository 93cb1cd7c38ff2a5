// SPDX-License-Identifier: MIT
//
// File: subgraph.go
// Role: Local-indexed view over the subgraph induced by a node subset.
// Determinism:
//   - Local index i corresponds to nodes[i] in the order given to Induce.

package core

// Subgraph is the subgraph of a Graph induced by a node subset.
//
// Local indices 0..Len()-1 map to global node indices through Global. Only
// edges with both endpoints inside the subset are visible. A Subgraph is
// ephemeral: it lives for one proposal attempt and is never mutated.
type Subgraph struct {
	g     *Graph
	nodes []int
	local map[int]int
	adj   [][]int
	pop   []int64
	total int64
}

// Induce builds the subgraph induced by nodes (global indices, no duplicates).
//
// Complexity:
//   - Time O(Σ deg(v) for v in nodes), Space O(same).
func (g *Graph) Induce(nodes []int) *Subgraph {
	s := &Subgraph{
		g:     g,
		nodes: nodes,
		local: make(map[int]int, len(nodes)),
		adj:   make([][]int, len(nodes)),
		pop:   make([]int64, len(nodes)),
	}
	for i, v := range nodes {
		s.local[v] = i
	}
	for i, v := range nodes {
		s.pop[i] = g.units[v].Population
		s.total += s.pop[i]
		for _, w := range g.adj[v] {
			if j, ok := s.local[w]; ok {
				s.adj[i] = append(s.adj[i], j)
			}
		}
	}

	return s
}

// Graph returns the parent graph.
func (s *Subgraph) Graph() *Graph { return s.g }

// Len returns the number of nodes in the subgraph.
func (s *Subgraph) Len() int { return len(s.nodes) }

// Global maps local index i to its node index in the parent graph.
func (s *Subgraph) Global(i int) int { return s.nodes[i] }

// Local maps a global node index to its local index, if the node is in the subset.
func (s *Subgraph) Local(v int) (int, bool) {
	i, ok := s.local[v]

	return i, ok
}

// Neighbors returns the local neighbor indices of local node i.
func (s *Subgraph) Neighbors(i int) []int { return s.adj[i] }

// Population returns the population of local node i.
func (s *Subgraph) Population(i int) int64 { return s.pop[i] }

// TotalPopulation returns the summed population of the subset.
func (s *Subgraph) TotalPopulation() int64 { return s.total }

// Connected reports whether the subgraph is connected. The empty subgraph is
// reported as not connected.
//
// Complexity: O(V + E) breadth-first search from local node 0.
func (s *Subgraph) Connected() bool {
	n := len(s.nodes)
	if n == 0 {
		return false
	}
	seen := make([]bool, n)
	queue := make([]int, 1, n)
	seen[0] = true
	for qi := 0; qi < len(queue); qi++ {
		for _, w := range s.adj[queue[qi]] {
			if !seen[w] {
				seen[w] = true
				queue = append(queue, w)
			}
		}
	}

	return len(queue) == n
}
