// SPDX-License-Identifier: MIT

package ensemble

import (
	"errors"
	"fmt"
)

// ErrInvalidAssignment indicates a worker layout that cannot receive runs.
var ErrInvalidAssignment = errors.New("ensemble: invalid run assignment")

// Strategy distributes run ids over workers.
type Strategy int

const (
	// Contiguous gives each rank one consecutive block; the first
	// total%size ranks get one extra run.
	Contiguous Strategy = iota
	// RoundRobin gives rank r the runs r+1, r+1+size, r+1+2·size, ...
	RoundRobin
)

// ParseStrategy resolves "contiguous" or "round_robin".
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "contiguous", "":
		return Contiguous, nil
	case "round_robin":
		return RoundRobin, nil
	}

	return 0, fmt.Errorf("ensemble: strategy %q: %w", s, ErrInvalidAssignment)
}

// Assign returns the 1-based run ids of rank among size workers sharing
// total runs. Every id in 1..total is assigned to exactly one rank. A rank
// may receive no runs when size > total.
func Assign(total, size, rank int, s Strategy) ([]int, error) {
	if total < 0 || size < 1 || rank < 0 || rank >= size {
		return nil, fmt.Errorf("ensemble: total=%d size=%d rank=%d: %w", total, size, rank, ErrInvalidAssignment)
	}

	var runs []int
	if s == RoundRobin {
		for id := rank + 1; id <= total; id += size {
			runs = append(runs, id)
		}

		return runs, nil
	}

	per, extra := total/size, total%size
	count, start := per, extra*(per+1)+(rank-extra)*per+1
	if rank < extra {
		count, start = per+1, rank*(per+1)+1
	}
	for i := 0; i < count; i++ {
		runs = append(runs, start+i)
	}

	return runs, nil
}

// RunFromArrayIndex maps a 0-based job-array index to its run id.
func RunFromArrayIndex(index int) (int, error) {
	if index < 0 {
		return 0, fmt.Errorf("ensemble: array index %d: %w", index, ErrInvalidAssignment)
	}

	return index + 1, nil
}
