// SPDX-License-Identifier: MIT
// Package: builder
//
// api.go - thin public entry-point for the builder package.
//
// Design contract:
//   - One orchestrator: BuildGraph(bopts, cons...). Resolves cfg, runs cons in
//     order against a fresh core.Builder, then freezes it.
//   - Determinism: same options/seed and constructor order ⇒ identical graphs.

package builder

import (
	"fmt"

	"github.com/katalvlaran/redistrict/core"
)

// Constructor stages units and adjacency into b using the resolved config.
// Constructors validate parameters early and return sentinel errors.
type Constructor func(b *core.Builder, cfg builderConfig) error

// BuildGraph resolves bopts, applies all constructors in order and returns the
// frozen graph. Constructor errors are wrapped with "BuildGraph: %w";
// validation failures from core.Builder.Build keep their core.ErrData chain.
//
// Complexity:
//   - O(len(bopts)) to resolve options, plus Σ cost of each constructor,
//     plus O(V + E log E) for Build.
func BuildGraph(bopts []BuilderOption, cons ...Constructor) (*core.Graph, error) {
	cfg := newBuilderConfig(bopts...)
	b := core.NewBuilder()

	for i, fn := range cons {
		if fn == nil {
			return nil, fmt.Errorf("BuildGraph: nil constructor at index %d: %w", i, ErrConstructFailed)
		}
		if err := fn(b, cfg); err != nil {
			return nil, fmt.Errorf("BuildGraph: %w", err)
		}
	}

	g, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("BuildGraph: %w", err)
	}

	return g, nil
}
