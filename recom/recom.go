// SPDX-License-Identifier: MIT

// Package recom implements the recombination (ReCom) proposal: merge two
// adjacent parts, draw a spanning tree of their union, cut it into two
// balanced pieces, and reassign the union accordingly.
//
// A Proposer is owned by one chain and is not safe for concurrent use.
package recom

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/katalvlaran/redistrict/partition"
	"github.com/katalvlaran/redistrict/tree"
)

// ErrInvalidConfig indicates an out-of-range Config field.
var ErrInvalidConfig = errors.New("recom: invalid config")

// Target selects the population window of each side of a cut.
type Target int

const (
	// TargetSplitEven aims each side at half the merged population, within ε.
	TargetSplitEven Target = iota
	// TargetIdeal aims each side at the graph-wide ideal population, within ε.
	TargetIdeal
)

// PairSelection selects how the two merged parts are chosen.
type PairSelection int

const (
	// PairUniform draws uniformly among adjacent part pairs.
	PairUniform PairSelection = iota
	// PairByCutEdge draws a uniform cut edge and merges its endpoints' parts,
	// weighting pairs by shared boundary length.
	PairByCutEdge
)

// ParseTarget resolves "split_even" or "ideal".
func ParseTarget(s string) (Target, error) {
	switch s {
	case "split_even", "":
		return TargetSplitEven, nil
	case "ideal":
		return TargetIdeal, nil
	}

	return 0, fmt.Errorf("recom: target %q: %w", s, ErrInvalidConfig)
}

// ParsePairs resolves "uniform" or "cut_edge".
func ParsePairs(s string) (PairSelection, error) {
	switch s {
	case "uniform", "":
		return PairUniform, nil
	case "cut_edge":
		return PairByCutEdge, nil
	}

	return 0, fmt.Errorf("recom: pairs %q: %w", s, ErrInvalidConfig)
}

// Config parameterizes a Proposer.
type Config struct {
	// Epsilon is the allowed fractional deviation of each side, in [0,1).
	Epsilon float64
	// NodeRepeats bounds the spanning trees drawn per proposal (≥1).
	NodeRepeats int
	Method      tree.Method
	Target      Target
	Pairs       PairSelection
	// Ideal overrides total/K for TargetIdeal when positive.
	Ideal float64
}

// Stats counts proposal activity since the Proposer was built.
type Stats struct {
	Calls    int64 // Propose invocations
	Trees    int64 // spanning trees drawn
	Found    int64 // proposals that produced a candidate
	NotFound int64 // proposals that exhausted NodeRepeats
}

// Proposer is a ReCom proposal.
type Proposer struct {
	cfg   Config
	stats Stats
}

// New validates cfg and returns a Proposer.
func New(cfg Config) (*Proposer, error) {
	if cfg.Epsilon < 0 || cfg.Epsilon >= 1 {
		return nil, fmt.Errorf("recom: epsilon=%v outside [0,1): %w", cfg.Epsilon, ErrInvalidConfig)
	}
	if cfg.NodeRepeats < 1 {
		return nil, fmt.Errorf("recom: node_repeats=%d < 1: %w", cfg.NodeRepeats, ErrInvalidConfig)
	}

	return &Proposer{cfg: cfg}, nil
}

// Stats returns a snapshot of the activity counters.
func (r *Proposer) Stats() Stats { return r.stats }

// Propose draws one ReCom candidate from p.
//
// Steps:
//  1. Choose two adjacent parts (A,B) per cfg.Pairs.
//  2. Induce the subgraph of A ∪ B and derive the side windows per cfg.Target.
//  3. Up to NodeRepeats times: sample a spanning tree, search a balanced cut.
//  4. On success, nodes on the cut's side go to A and the rest to B; every
//     other part is unchanged.
//
// Returns (nil, false, nil) when p has no adjacent pair or no cut was found.
// A non-nil error (tree.ErrDisconnectedSubgraph) means p lost contiguity.
func (r *Proposer) Propose(p *partition.Partition, rng *rand.Rand) (*partition.Partition, bool, error) {
	r.stats.Calls++

	pair, ok := r.choosePair(p, rng)
	if !ok {
		r.stats.NotFound++
		return nil, false, nil
	}

	sub := p.Induce(pair.A, pair.B)
	var window tree.Bounds
	switch r.cfg.Target {
	case TargetIdeal:
		ideal := r.cfg.Ideal
		if ideal <= 0 {
			ideal = float64(p.Graph().TotalPopulation()) / float64(p.K())
		}
		window = tree.Around(ideal, r.cfg.Epsilon)
	default:
		window = tree.Around(float64(sub.TotalPopulation())/2, r.cfg.Epsilon)
	}

	var (
		cut   tree.Cut
		found bool
	)
	for i := 0; i < r.cfg.NodeRepeats && !found; i++ {
		t, err := r.cfg.Method.Sample(sub, rng)
		if err != nil {
			return nil, false, fmt.Errorf("recom: merging parts %d and %d: %w", pair.A, pair.B, err)
		}
		r.stats.Trees++
		cut, found = tree.FindBalancedCut(t, window, window, rng)
	}
	if !found {
		r.stats.NotFound++
		return nil, false, nil
	}

	onSide := make([]bool, sub.Len())
	for _, i := range cut.Side {
		onSide[i] = true
	}
	moves := make([]partition.Move, sub.Len())
	for i := range moves {
		part := pair.B
		if onSide[i] {
			part = pair.A
		}
		moves[i] = partition.Move{Node: sub.Global(i), Part: part}
	}
	next, err := p.Flip(moves)
	if err != nil {
		return nil, false, fmt.Errorf("recom: applying cut: %w", err)
	}
	r.stats.Found++

	return next, true, nil
}

func (r *Proposer) choosePair(p *partition.Partition, rng *rand.Rand) (partition.Pair, bool) {
	if r.cfg.Pairs == PairByCutEdge {
		edges := p.CutEdges()
		if len(edges) == 0 {
			return partition.Pair{}, false
		}
		e := p.Graph().Edge(edges[rng.Intn(len(edges))])

		return partition.PairOf(p.Part(e.U), p.Part(e.V)), true
	}

	pairs := p.AdjacentPairs()
	if len(pairs) == 0 {
		return partition.Pair{}, false
	}

	return pairs[rng.Intn(len(pairs))], true
}
