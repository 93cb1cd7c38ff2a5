// SPDX-License-Identifier: MIT
// Package: builder
//
// config.go: internal configuration and deterministic defaults.
//
// Deterministic defaults:
//   • idFn  = decimalID            ("0","1","2",...) for Path
//   • rng   = nil                  (pure unless seeded)
//   • popFn = ConstantPopulationFn(1)
//   • attrFn = nil                 (no attribute payload)

package builder

import (
	"math/rand"
	"strconv"
)

// builderConfig aggregates all knobs used by constructors.
// It is passed by value to constructors.
type builderConfig struct {
	// Vertex ID strategy: index -> ID.
	idFn func(int) string
	// RNG for stochastic population draws; nil means no randomness.
	rng *rand.Rand
	// Population generator per unit.
	popFn PopulationFn
	// Optional attribute payload per unit index.
	attrFn func(i int) map[string]any
}

const defaultPopulation = int64(1)

// newBuilderConfig constructs a config with deterministic defaults and applies
// all options in order (last wins).
// Complexity: O(len(opts)).
func newBuilderConfig(opts ...BuilderOption) builderConfig {
	cfg := builderConfig{
		idFn:  decimalID,
		popFn: ConstantPopulationFn(defaultPopulation),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// attrs returns the attribute payload for unit i, or nil.
func (c builderConfig) attrs(i int) map[string]any {
	if c.attrFn == nil {
		return nil
	}

	return c.attrFn(i)
}

func decimalID(i int) string {
	return strconv.Itoa(i)
}
