// SPDX-License-Identifier: MIT

// Package redistrict samples ensembles of districting plans with the
// recombination (ReCom) Markov chain.
//
// A plan partitions a graph of geographic units into K contiguous parts of
// roughly equal population. Starting from a seed plan, each chain step merges
// two adjacent parts, draws a random spanning tree of their union and cuts it
// into two balanced pieces. Feasible candidates are always accepted.
//
// Under the hood, everything is organized under these subpackages:
//
//	core/      immutable unit graph, builder, induced subgraphs
//	builder/   graph constructors (grid, path) and the JSON loader
//	partition/ immutable plans with incrementally maintained updaters
//	tree/      spanning-tree samplers, balanced cuts, seed plans
//	recom/     the ReCom proposal
//	chain/     constraints, acceptance and the step driver
//	stats/     per-step statistics and summaries
//	ensemble/  run distribution and the parallel runner
//	sink/      CSV, Redis and Postgres persistence
//	metrics/   Prometheus collectors
//	config/    viper configuration and logging setup
//	cmd/recom  the worker binary
//
// Quick ASCII example, K=2 on a 2×4 grid:
//
//	A─A─B─B
//	│ │ │ │
//	A─A─B─B
//
// Every part is connected and holds four units.
package redistrict
