// SPDX-License-Identifier: MIT

// Package stats turns a chain's step sequence into per-step statistics and
// ensemble summaries. It consumes chain.Step values and never influences the
// chain itself.
package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/redistrict/chain"
	"github.com/katalvlaran/redistrict/partition"
)

// ErrAttribute indicates a unit attribute that is missing or not numeric.
var ErrAttribute = errors.New("stats: attribute missing or not numeric")

// StepStats is one row of the per-step statistics table.
type StepStats struct {
	Step     int // 1-based
	Kind     chain.StepKind
	CutEdges int
	MinPop   int64
	MaxPop   int64
	PopRange int64 // MaxPop - MinPop
}

// Of derives the statistics of s.
// Complexity: O(K).
func Of(s chain.Step) StepStats {
	p := s.Partition
	minPop, maxPop := int64(math.MaxInt64), int64(math.MinInt64)
	for part := 0; part < p.K(); part++ {
		pop := p.Population(part)
		minPop = min(minPop, pop)
		maxPop = max(maxPop, pop)
	}

	return StepStats{
		Step:     s.Index,
		Kind:     s.Kind,
		CutEdges: p.CutEdgeCount(),
		MinPop:   minPop,
		MaxPop:   maxPop,
		PopRange: maxPop - minPop,
	}
}

// Recorder accumulates StepStats. Its Observe method is a chain.Observer.
type Recorder struct {
	steps []StepStats
}

// NewRecorder returns a Recorder with room for capacity steps.
func NewRecorder(capacity int) *Recorder {
	return &Recorder{steps: make([]StepStats, 0, max(capacity, 0))}
}

// Observe records s.
func (r *Recorder) Observe(s chain.Step) { r.steps = append(r.steps, Of(s)) }

// Steps returns the recorded rows in step order.
func (r *Recorder) Steps() []StepStats { return r.steps }

// Summary aggregates a step sequence.
type Summary struct {
	Steps          int
	Accepted       int
	AcceptanceRate float64
	CutEdgesMean   float64
	CutEdgesStdDev float64
	CutEdgesMin    float64
	CutEdgesMax    float64
	PopRangeMean   float64
	PopRangeMax    float64
}

// Summarize computes a Summary of steps. The zero Summary is returned for an
// empty input. StdDev is the unbiased sample deviation (NaN for one step).
func Summarize(steps []StepStats) Summary {
	if len(steps) == 0 {
		return Summary{}
	}
	cuts := make([]float64, len(steps))
	ranges := make([]float64, len(steps))
	accepted := 0
	for i, s := range steps {
		cuts[i] = float64(s.CutEdges)
		ranges[i] = float64(s.PopRange)
		if s.Kind == chain.Accepted {
			accepted++
		}
	}
	mean, std := stat.MeanStdDev(cuts, nil)

	return Summary{
		Steps:          len(steps),
		Accepted:       accepted,
		AcceptanceRate: float64(accepted) / float64(len(steps)),
		CutEdgesMean:   mean,
		CutEdgesStdDev: std,
		CutEdgesMin:    floats.Min(cuts),
		CutEdgesMax:    floats.Max(cuts),
		PopRangeMean:   stat.Mean(ranges, nil),
		PopRangeMax:    floats.Max(ranges),
	}
}

// WeightedMean returns, per part, the population-weighted mean of the
// numeric unit attribute attr.
//
// Errors: ErrAttribute if a unit lacks attr or its value is not a number.
// Complexity: O(V).
func WeightedMean(p *partition.Partition, attr string) ([]float64, error) {
	g := p.Graph()
	out := make([]float64, p.K())
	for part := range out {
		members := p.Members(part)
		x := make([]float64, len(members))
		w := make([]float64, len(members))
		for i, v := range members {
			val, err := numeric(g.Attr(v, attr))
			if err != nil {
				return nil, fmt.Errorf("stats: unit %q attribute %q: %w", g.ID(v), attr, err)
			}
			x[i] = val
			w[i] = float64(g.Population(v))
		}
		out[part] = stat.Mean(x, w)
	}

	return out, nil
}

func numeric(v any, ok bool) (float64, error) {
	if !ok {
		return 0, ErrAttribute
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, ErrAttribute
	}
}
