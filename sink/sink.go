// SPDX-License-Identifier: MIT

// Package sink persists the outcome of one chain run: the final node → part
// assignment and the per-step statistics. Sinks are collaborators of the
// ensemble runner; the sampler never depends on them succeeding.
package sink

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/katalvlaran/redistrict/partition"
	"github.com/katalvlaran/redistrict/stats"
)

// ErrEmptyResult indicates a Result without a final partition.
var ErrEmptyResult = errors.New("sink: result has no final partition")

// ErrDistrictMismatch indicates weighted means that do not cover every part.
var ErrDistrictMismatch = errors.New("sink: weighted means do not match the part count")

// Result is everything persisted for one run.
type Result struct {
	BatchID string
	RunID   int
	Final   *partition.Partition
	Steps   []stats.StepStats
	// WeightedAttr names the attribute averaged in WeightedMeans; both are
	// empty when the run computed no weighted means.
	WeightedAttr  string
	WeightedMeans []float64
}

// Rows returns the (unit id, part) pairs of the final assignment in node order.
func (r Result) Rows() ([][2]string, error) {
	if r.Final == nil {
		return nil, ErrEmptyResult
	}
	g := r.Final.Graph()
	rows := make([][2]string, g.Len())
	for v := range rows {
		rows[v] = [2]string{g.ID(v), fmt.Sprint(r.Final.Part(v))}
	}

	return rows, nil
}

// Districts returns one (part, population, weighted mean) row per part, or
// nil when r carries no weighted means.
func (r Result) Districts() ([][3]string, error) {
	if r.Final == nil {
		return nil, ErrEmptyResult
	}
	if r.WeightedMeans == nil {
		return nil, nil
	}
	if len(r.WeightedMeans) != r.Final.K() {
		return nil, fmt.Errorf("sink: %d weighted means for %d parts: %w", len(r.WeightedMeans), r.Final.K(), ErrDistrictMismatch)
	}
	rows := make([][3]string, r.Final.K())
	for part := range rows {
		rows[part] = [3]string{
			strconv.Itoa(part),
			strconv.FormatInt(r.Final.Population(part), 10),
			strconv.FormatFloat(r.WeightedMeans[part], 'f', -1, 64),
		}
	}

	return rows, nil
}

// Sink stores run results. Implementations must be safe for concurrent use
// by the ensemble's workers.
type Sink interface {
	Write(ctx context.Context, r Result) error
	Close() error
}

// Multi writes to every sink in order and joins their errors.
type Multi []Sink

// Write implements Sink.
func (m Multi) Write(ctx context.Context, r Result) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Close implements Sink.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
