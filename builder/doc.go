// SPDX-License-Identifier: MIT

// Package builder assembles population graphs for the sampler: deterministic
// fixtures (grids, paths) for tests and examples, and a JSON adjacency loader
// that plays the part of the external data-loading collaborator.
//
// Components:
//
//   - BuildGraph(opts, cons...): one orchestrator. Resolves options into an
//     immutable builderConfig, runs every Constructor against a core.Builder,
//     then freezes the result with core.Builder.Build.
//   - Constructors: Grid(rows, cols), Path(n).
//   - Population policies (PopulationFn): ConstantPopulationFn,
//     UniformPopulationFn.
//   - Loaders: ReadJSON / LoadJSON for networkx-style adjacency documents.
//
// Guarantees:
//
//   - Determinism: same options, seed and constructor order ⇒ identical graphs.
//   - Validation errors are builder sentinels (ErrTooFewVertices, ErrBadInput);
//     malformed graph data surfaces as core.ErrData through Build.
package builder
