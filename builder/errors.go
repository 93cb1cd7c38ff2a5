// SPDX-License-Identifier: MIT
// Package: builder
//
// errors.go: sentinel errors for the builder package.
//
// Error policy:
//   • Only sentinel variables are exposed; callers branch with errors.Is.
//   • Implementations attach context using %w.

package builder

import "errors"

// ErrTooFewVertices indicates that a size parameter (n, rows, cols) is below
// the minimum for the requested constructor.
var ErrTooFewVertices = errors.New("builder: parameter too small")

// ErrConstructFailed indicates a nil constructor or a constructor that could
// not complete.
var ErrConstructFailed = errors.New("builder: construction failed")

// ErrBadInput indicates an unreadable or structurally invalid input document
// (bad JSON, missing population attribute, adjacency/node count mismatch).
var ErrBadInput = errors.New("builder: invalid input document")
