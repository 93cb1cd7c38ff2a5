// SPDX-License-Identifier: MIT

package chain

import "github.com/katalvlaran/redistrict/partition"

// Constraint reports whether a Partition is admissible.
type Constraint func(p *partition.Partition) bool

// WithinPercentOfIdeal admits a Partition when every part's population lies in
// [ideal·(1−eps), ideal·(1+eps)]. All parts are checked, not only those the
// last move touched.
func WithinPercentOfIdeal(ideal, eps float64) Constraint {
	lo, hi := ideal*(1-eps), ideal*(1+eps)

	return func(p *partition.Partition) bool {
		for part := 0; part < p.K(); part++ {
			pop := float64(p.Population(part))
			if pop < lo || pop > hi {
				return false
			}
		}

		return true
	}
}

// Contiguous admits a Partition whose parts are all connected. When p has a
// parent, only the parts that gained or lost nodes are checked.
func Contiguous(p *partition.Partition) bool {
	parent := p.Parent()
	if parent == nil {
		for part := 0; part < p.K(); part++ {
			if !p.Contiguous(part) {
				return false
			}
		}

		return true
	}

	touched := make(map[int]struct{})
	for _, v := range p.Moved() {
		touched[p.Part(v)] = struct{}{}
		touched[parent.Part(v)] = struct{}{}
	}
	for part := range touched {
		if !p.Contiguous(part) {
			return false
		}
	}

	return true
}

// Validator admits a Partition only when every constraint does. Constraints
// are evaluated in order and evaluation stops at the first failure.
func Validator(cs ...Constraint) Constraint {
	return func(p *partition.Partition) bool {
		for _, c := range cs {
			if !c(p) {
				return false
			}
		}

		return true
	}
}
