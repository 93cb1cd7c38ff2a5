// SPDX-License-Identifier: MIT
// Package: builder
//
// options.go: functional options for the builder package.
//
// Contract:
//   • Option constructors validate and panic on meaningless inputs (nil
//     functions, nil RNG). Constructors themselves never panic.
//   • Seeding is explicit via WithSeed or WithRand.

package builder

import "math/rand"

// BuilderOption customizes a builderConfig before graph construction.
type BuilderOption func(*builderConfig)

// WithIDScheme sets the unit ID generator used by Path. Panics on nil.
func WithIDScheme(fn func(int) string) BuilderOption {
	if fn == nil {
		panic("builder: WithIDScheme(nil)")
	}
	return func(c *builderConfig) {
		c.idFn = fn
	}
}

// WithRand provides an explicit RNG for stochastic population draws. Panics on nil.
func WithRand(r *rand.Rand) BuilderOption {
	if r == nil {
		panic("builder: WithRand(nil)")
	}
	return func(c *builderConfig) {
		c.rng = r
	}
}

// WithSeed creates a new seeded *rand.Rand.
func WithSeed(seed int64) BuilderOption {
	return func(c *builderConfig) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

// WithPopulationFn overrides the per-unit population generator. Panics on nil.
func WithPopulationFn(fn PopulationFn) BuilderOption {
	if fn == nil {
		panic("builder: WithPopulationFn(nil)")
	}
	return func(c *builderConfig) {
		c.popFn = fn
	}
}

// WithAttrs attaches an attribute payload to every unit, keyed by unit index
// in emission order. Panics on nil.
func WithAttrs(fn func(i int) map[string]any) BuilderOption {
	if fn == nil {
		panic("builder: WithAttrs(nil)")
	}
	return func(c *builderConfig) {
		c.attrFn = fn
	}
}
