// SPDX-License-Identifier: MIT
//
// File: types.go
// Role: GeoUnit, Edge, Graph and the sentinel errors of the graph model.
// Policy:
//   - Graph is read-only after Build; no method mutates it.
//   - Every malformed-input sentinel wraps ErrData so callers can branch on
//     the whole class with a single errors.Is.

package core

import (
	"errors"
	"fmt"
)

// ErrData is the umbrella sentinel for malformed graph input.
var ErrData = errors.New("core: malformed graph data")

// Specific malformed-input sentinels; each one satisfies errors.Is(err, ErrData).
var (
	// ErrNoUnits indicates Build was called without any unit.
	ErrNoUnits = fmt.Errorf("%w: no units", ErrData)

	// ErrEmptyUnitID indicates a unit with an empty identifier.
	ErrEmptyUnitID = fmt.Errorf("%w: unit ID is empty", ErrData)

	// ErrDuplicateUnit indicates two units share the same identifier.
	ErrDuplicateUnit = fmt.Errorf("%w: duplicate unit ID", ErrData)

	// ErrUnknownUnit indicates an edge references an identifier that was never added.
	ErrUnknownUnit = fmt.Errorf("%w: unknown unit", ErrData)

	// ErrSelfLoop indicates an edge whose endpoints coincide.
	ErrSelfLoop = fmt.Errorf("%w: self-loop", ErrData)

	// ErrBadPopulation indicates a zero or negative population.
	ErrBadPopulation = fmt.Errorf("%w: population must be positive", ErrData)

	// ErrDisconnectedGraph indicates that the adjacency does not connect every unit.
	ErrDisconnectedGraph = fmt.Errorf("%w: graph is disconnected", ErrData)
)

// GeoUnit is a single node of the population graph.
type GeoUnit struct {
	// ID is the external identifier (GEOID, precinct code, ...).
	ID string

	// Population is the scalar weight balanced by the sampler.
	Population int64

	// Attrs holds arbitrary payload (income, an existing plan label, ...).
	// It is shared, not deep-copied, and must be treated as read-only.
	Attrs map[string]any
}

// Edge is an undirected adjacency between two node indices with U < V.
type Edge struct {
	U, V int
}

// Other returns the endpoint of e opposite to n.
// Complexity: O(1).
func (e Edge) Other(n int) int {
	if e.U == n {
		return e.V
	}

	return e.U
}

// Graph is the immutable population graph.
//
// Nodes are addressed by dense indices 0..Len()-1 assigned in insertion order.
// adj[i] lists neighbor indices ascending; incident[i] lists edge indices
// touching i ascending; edges are sorted by (U,V).
type Graph struct {
	units    []GeoUnit
	index    map[string]int
	adj      [][]int
	incident [][]int
	edges    []Edge
	totalPop int64
}

// Len returns the number of units.
// Complexity: O(1).
func (g *Graph) Len() int { return len(g.units) }

// EdgeCount returns the number of undirected edges.
// Complexity: O(1).
func (g *Graph) EdgeCount() int { return len(g.edges) }

// ID returns the external identifier of node i.
// Complexity: O(1).
func (g *Graph) ID(i int) string { return g.units[i].ID }

// Index resolves an external identifier to its node index.
// Complexity: O(1).
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]

	return i, ok
}

// Unit returns a copy of node i's GeoUnit. Attrs is shared.
// Complexity: O(1).
func (g *Graph) Unit(i int) GeoUnit { return g.units[i] }

// Population returns the population of node i.
// Complexity: O(1).
func (g *Graph) Population(i int) int64 { return g.units[i].Population }

// TotalPopulation returns the sum of all unit populations.
// Complexity: O(1).
func (g *Graph) TotalPopulation() int64 { return g.totalPop }

// Neighbors returns the ascending neighbor indices of node i.
// The returned slice is owned by the Graph and must not be modified.
// Complexity: O(1).
func (g *Graph) Neighbors(i int) []int { return g.adj[i] }

// IncidentEdges returns the ascending indices of edges touching node i.
// The returned slice is owned by the Graph and must not be modified.
// Complexity: O(1).
func (g *Graph) IncidentEdges(i int) []int { return g.incident[i] }

// Edge returns edge k.
// Complexity: O(1).
func (g *Graph) Edge(k int) Edge { return g.edges[k] }

// Edges returns all edges sorted by (U,V).
// The returned slice is owned by the Graph and must not be modified.
// Complexity: O(1).
func (g *Graph) Edges() []Edge { return g.edges }

// Attr returns the attribute key of node i, if present.
// Complexity: O(1).
func (g *Graph) Attr(i int, key string) (any, bool) {
	v, ok := g.units[i].Attrs[key]

	return v, ok
}
