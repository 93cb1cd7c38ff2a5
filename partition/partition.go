// SPDX-License-Identifier: MIT

package partition

import (
	"fmt"
	"maps"
	"sort"

	"github.com/katalvlaran/redistrict/core"
)

// New builds the initial Partition of g into k parts from assignment
// (node index → part id) and computes every updater from scratch.
//
// Errors:
//   - ErrInvalidAssignment if len(assignment) != g.Len(), k < 1, or any part id is outside [0,k).
//   - ErrEmptyPart if some part in [0,k) has no node.
//
// Complexity: O(V + E).
func New(g *core.Graph, assignment []int, k int) (*Partition, error) {
	if k < 1 {
		return nil, fmt.Errorf("partition: k=%d: %w", k, ErrInvalidAssignment)
	}
	if len(assignment) != g.Len() {
		return nil, fmt.Errorf("partition: %d assignments for %d nodes: %w",
			len(assignment), g.Len(), ErrInvalidAssignment)
	}
	for v, part := range assignment {
		if part < 0 || part >= k {
			return nil, fmt.Errorf("partition: node %q part %d outside [0,%d): %w",
				g.ID(v), part, k, ErrInvalidAssignment)
		}
	}

	p := &Partition{g: g, k: k, assign: append([]int(nil), assignment...)}
	p.pop, p.members, p.cut, p.cutCount, p.pairs = recompute(g, p.assign, k)
	for part, m := range p.members {
		if len(m) == 0 {
			return nil, fmt.Errorf("partition: part %d: %w", part, ErrEmptyPart)
		}
	}

	return p, nil
}

// FromAttribute builds a Partition from an existing plan stored in unit
// attribute attr. Distinct values, rendered with %v and sorted, become parts
// 0..k-1; the returned labels map part id → attribute value.
//
// Errors: ErrInvalidAssignment if any unit lacks the attribute.
func FromAttribute(g *core.Graph, attr string) (*Partition, []string, error) {
	raw := make([]string, g.Len())
	set := make(map[string]struct{})
	for v := 0; v < g.Len(); v++ {
		val, ok := g.Attr(v, attr)
		if !ok {
			return nil, nil, fmt.Errorf("partition: unit %q has no attribute %q: %w",
				g.ID(v), attr, ErrInvalidAssignment)
		}
		raw[v] = fmt.Sprintf("%v", val)
		set[raw[v]] = struct{}{}
	}
	labels := make([]string, 0, len(set))
	for l := range set {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	ids := make(map[string]int, len(labels))
	for i, l := range labels {
		ids[l] = i
	}
	assignment := make([]int, g.Len())
	for v, l := range raw {
		assignment[v] = ids[l]
	}

	p, err := New(g, assignment, len(labels))
	if err != nil {
		return nil, nil, err
	}

	return p, labels, nil
}

// Assign returns a new Partition with node moved to part.
// See Flip for cost and errors.
func (p *Partition) Assign(node, part int) (*Partition, error) {
	return p.Flip([]Move{{Node: node, Part: part}})
}

// Flip returns a new Partition with every move applied; the receiver is unchanged.
//
// Implementation:
//   - Stage 1: Copy the assignment and population vectors; apply population
//     diffs for each effective move (old part −pop, new part +pop).
//   - Stage 2: Rebuild member lists of touched parts only.
//   - Stage 3: Re-evaluate cut membership of edges incident to moved nodes,
//     adjusting the cut count and per-pair counts.
//
// Errors:
//   - ErrInvalidAssignment for a node or part out of range.
//   - ErrEmptyPart if a move leaves a part without members.
//
// Complexity:
//   - Time O(V + E) for the slice copies (memmove), plus O(Σ|touched part| +
//     Σ deg(moved)) for updater work. No full graph scan.
func (p *Partition) Flip(moves []Move) (*Partition, error) {
	next := &Partition{
		g:        p.g,
		k:        p.k,
		assign:   append([]int(nil), p.assign...),
		pop:      append([]int64(nil), p.pop...),
		members:  append([][]int(nil), p.members...),
		cut:      append([]bool(nil), p.cut...),
		cutCount: p.cutCount,
		pairs:    maps.Clone(p.pairs),
		parent:   p.detached(),
	}

	touched := make(map[int]struct{})
	movedSet := make(map[int]struct{}, len(moves))
	for _, m := range moves {
		if m.Node < 0 || m.Node >= len(p.assign) || m.Part < 0 || m.Part >= p.k {
			return nil, fmt.Errorf("partition: move %+v: %w", m, ErrInvalidAssignment)
		}
		old := next.assign[m.Node]
		if old == m.Part {
			continue
		}
		next.assign[m.Node] = m.Part
		pop := p.g.Population(m.Node)
		next.pop[old] -= pop
		next.pop[m.Part] += pop
		touched[old] = struct{}{}
		touched[m.Part] = struct{}{}
		movedSet[m.Node] = struct{}{}
	}

	// Nodes that ended where they started are not moved.
	moved := make([]int, 0, len(movedSet))
	for v := range movedSet {
		if next.assign[v] != p.assign[v] {
			moved = append(moved, v)
		}
	}
	sort.Ints(moved)
	next.moved = moved

	for part := range touched {
		next.members[part] = rebuildMembers(p, next, part, moved)
		if len(next.members[part]) == 0 {
			return nil, fmt.Errorf("partition: part %d: %w", part, ErrEmptyPart)
		}
	}

	seen := make(map[int]struct{})
	for _, v := range moved {
		for _, e := range p.g.IncidentEdges(v) {
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			next.updateEdge(p, e)
		}
	}

	return next, nil
}

// updateEdge moves edge e from its state under prev to its state under p.
func (p *Partition) updateEdge(prev *Partition, e int) {
	edge := p.g.Edge(e)
	oa, ob := prev.assign[edge.U], prev.assign[edge.V]
	na, nb := p.assign[edge.U], p.assign[edge.V]
	was, is := oa != ob, na != nb

	if was {
		key := PairOf(oa, ob)
		if p.pairs[key]--; p.pairs[key] == 0 {
			delete(p.pairs, key)
		}
		p.cutCount--
	}
	if is {
		p.pairs[PairOf(na, nb)]++
		p.cutCount++
	}
	p.cut[e] = is
}

// rebuildMembers derives the ascending member list of part under next from
// its list under prev and the moved nodes.
func rebuildMembers(prev, next *Partition, part int, moved []int) []int {
	old := prev.members[part]
	out := make([]int, 0, len(old)+len(moved))
	for _, v := range old {
		if next.assign[v] == part {
			out = append(out, v)
		}
	}
	arrived := false
	for _, v := range moved {
		if next.assign[v] == part {
			out = append(out, v)
			arrived = true
		}
	}
	if arrived {
		sort.Ints(out)
	}

	return out
}

// detached returns a shallow copy of p without its parent link, so that a
// chain of Flips keeps at most one ancestor alive.
func (p *Partition) detached() *Partition {
	cp := *p
	cp.parent = nil

	return &cp
}

// AdjacentPairs returns every pair of parts sharing at least one cut edge,
// sorted by (A,B).
// Complexity: O(P log P) for P adjacent pairs.
func (p *Partition) AdjacentPairs() []Pair {
	out := make([]Pair, 0, len(p.pairs))
	for key := range p.pairs {
		out = append(out, key)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})

	return out
}

// Contiguous reports whether the subgraph induced by part is connected.
// Complexity: O(|part| + edges inside part).
func (p *Partition) Contiguous(part int) bool {
	return p.g.Induce(p.members[part]).Connected()
}

// Induce returns the subgraph induced by the union of the given parts, with
// local nodes in ascending global order.
func (p *Partition) Induce(parts ...int) *core.Subgraph {
	var nodes []int
	for _, part := range parts {
		nodes = append(nodes, p.members[part]...)
	}
	if len(parts) > 1 {
		sort.Ints(nodes)
	}

	return p.g.Induce(nodes)
}
