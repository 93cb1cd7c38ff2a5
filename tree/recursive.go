// SPDX-License-Identifier: MIT
//
// File: recursive.go
// Role: Seed plan construction by peeling balanced parts off spanning trees.

package tree

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/katalvlaran/redistrict/core"
	"github.com/katalvlaran/redistrict/partition"
)

// DefaultMaxAttempts bounds the spanning trees drawn per peeled part.
const DefaultMaxAttempts = 10000

// Options configures RecursiveTreePart.
type Options struct {
	Method      Method
	MaxAttempts int
	// Ideal overrides total/k as the per-part target when positive.
	Ideal float64
}

// Option mutates Options.
type Option func(*Options)

// WithMethod selects the spanning-tree sampler.
func WithMethod(m Method) Option { return func(o *Options) { o.Method = m } }

// WithMaxAttempts sets the per-part attempt budget. Panics if n < 1.
func WithMaxAttempts(n int) Option {
	if n < 1 {
		panic("tree: WithMaxAttempts requires n >= 1")
	}

	return func(o *Options) { o.MaxAttempts = n }
}

// WithIdeal overrides the per-part population target.
func WithIdeal(ideal float64) Option { return func(o *Options) { o.Ideal = ideal } }

// RecursiveTreePart assigns every node of g to one of k parts so that each
// part is connected and has population within ideal·(1±eps).
//
// Parts 0..k-2 are peeled one at a time from the not-yet-assigned remainder;
// part k-1 receives what is left. The window for each peeled part is shifted
// by the running debt (Σ peeled − ideal·peeled) so that earlier deviations are
// compensated, while the remainder must stay within the window of the parts
// still to come.
//
// Errors:
//   - ErrInvalidParts if k < 1.
//   - ErrInfeasiblePartition if a part cannot be peeled within MaxAttempts trees.
//
// Complexity: O(k · MaxAttempts · T(V)) worst case, T being one tree draw plus cut search.
func RecursiveTreePart(g *core.Graph, k int, eps float64, rng *rand.Rand, opts ...Option) ([]int, error) {
	if k < 1 {
		return nil, fmt.Errorf("tree: k=%d: %w", k, ErrInvalidParts)
	}
	o := Options{Method: MethodWilson, MaxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(&o)
	}
	ideal := o.Ideal
	if ideal <= 0 {
		ideal = float64(g.TotalPopulation()) / float64(k)
	}
	window := Around(ideal, eps)

	assign := make([]int, g.Len())
	remaining := make([]int, g.Len())
	for v := range remaining {
		remaining[v] = v
	}
	debt := 0.0

	for part := 0; part < k-1; part++ {
		side := Bounds{
			Lo: math.Max(window.Lo, window.Lo-debt),
			Hi: math.Min(window.Hi, window.Hi-debt),
		}
		rest := window.Scale(float64(k - 1 - part))
		if side.Empty() {
			return nil, fmt.Errorf("tree: part %d window exhausted by debt %.1f: %w", part, debt, ErrInfeasiblePartition)
		}

		sub := g.Induce(remaining)
		cut, ok, err := Bipartition(sub, side, rest, o.Method, o.MaxAttempts, rng)
		if err != nil {
			return nil, fmt.Errorf("tree: part %d: %w", part, err)
		}
		if !ok {
			return nil, fmt.Errorf("tree: part %d after %d attempts: %w", part, o.MaxAttempts, ErrInfeasiblePartition)
		}

		taken := make(map[int]struct{}, len(cut.Side))
		for _, i := range cut.Side {
			v := sub.Global(i)
			assign[v] = part
			taken[v] = struct{}{}
		}
		left := make([]int, 0, len(remaining)-len(taken))
		for _, v := range remaining {
			if _, ok := taken[v]; !ok {
				left = append(left, v)
			}
		}
		remaining = left
		debt += float64(cut.Population) - ideal
	}
	for _, v := range remaining {
		assign[v] = k - 1
	}

	return assign, nil
}

// InitialPartition runs RecursiveTreePart and wraps the result as a Partition.
func InitialPartition(g *core.Graph, k int, eps float64, rng *rand.Rand, opts ...Option) (*partition.Partition, error) {
	assign, err := RecursiveTreePart(g, k, eps, rng, opts...)
	if err != nil {
		return nil, err
	}

	return partition.New(g, assign, k)
}
