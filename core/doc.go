// SPDX-License-Identifier: MIT

// Package core provides the immutable population graph consumed by the
// redistricting sampler.
//
// A Graph G = (V,E) is a set of geographic units (GeoUnit), each carrying an
// opaque string ID, an integer population and an arbitrary attribute payload,
// plus an undirected adjacency relation between units.
//
// Why a separate, frozen type?
//
//   - Shared by every chain in an ensemble; immutable after Build, so no locks.
//   - Dense node indices 0..N-1 make partition updaters slice-backed and cheap
//     to copy on each accepted step.
//   - Deterministic: node indices follow insertion order, neighbor lists and
//     edge lists are sorted ascending.
//
// Lifecycle:
//
//	b := core.NewBuilder()
//	_ = b.AddUnit("A", 10, nil)  // duplicates are recorded and reported by Build
//	_ = b.AddUnit("B", 12, nil)
//	b.AddEdge("A", "B")          // unknown endpoints are reported by Build
//	g, err := b.Build()          // errors.Is(err, core.ErrData) on malformed input
//
// Induced subgraphs:
//
//	sub := g.Induce([]int{0, 3, 4})
//	sub.Neighbors(0) // local indices, only neighbors inside the node subset
//
// Errors:
//
//	ErrData               - umbrella for every malformed-input error below.
//	ErrNoUnits            - Build called on an empty builder.
//	ErrEmptyUnitID        - unit ID is the empty string.
//	ErrDuplicateUnit      - two units share an ID.
//	ErrUnknownUnit        - an edge references an ID that was never added.
//	ErrSelfLoop           - an edge joins a unit to itself.
//	ErrBadPopulation      - population is zero or negative.
//	ErrDisconnectedGraph  - the adjacency does not connect all units.
package core
