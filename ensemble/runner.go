// SPDX-License-Identifier: MIT

// Package ensemble runs many independent chains over one shared graph.
//
// Every run owns its random stream, derived from (seed, run id), so a run's
// output is reproducible regardless of worker count or scheduling. A failing
// run is reported as a *RunError and never affects other runs. Run returns
// only after every run has finished.
package ensemble

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/katalvlaran/redistrict/chain"
	"github.com/katalvlaran/redistrict/core"
	"github.com/katalvlaran/redistrict/metrics"
	"github.com/katalvlaran/redistrict/partition"
	"github.com/katalvlaran/redistrict/recom"
	"github.com/katalvlaran/redistrict/sink"
	"github.com/katalvlaran/redistrict/stats"
	"github.com/katalvlaran/redistrict/tree"
)

// Stage names the phase of a run in which a fatal error occurred.
type Stage string

const (
	StageLoad    Stage = "load"    // graph input
	StageSeed    Stage = "seed"    // initial plan construction or validation
	StageChain   Stage = "chain"   // proposal setup or a fatal step
	StageStats   Stage = "stats"   // per-part aggregates of the final plan
	StagePersist Stage = "persist" // sink write
)

// RunError reports a fatal error of one run.
type RunError struct {
	RunID int
	Stage Stage
	Err   error
}

// Error implements error.
func (e *RunError) Error() string {
	return fmt.Sprintf("ensemble: run %d (%s): %v", e.RunID, e.Stage, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *RunError) Unwrap() error { return e.Err }

// Settings are the chain parameters shared by every run.
type Settings struct {
	Parts       int
	Epsilon     float64
	NodeRepeats int
	TotalSteps  int
	Seed        int64
	Method      tree.Method
	Target      recom.Target
	Pairs       recom.PairSelection
	MaxAttempts int
	// Ideal is the per-part population target; 0 or less means total/Parts.
	Ideal float64
	// WeightedAttr, when set, names a numeric unit attribute whose
	// population-weighted mean per part is computed on the final plan.
	WeightedAttr string
	// ProgressEvery logs an info line every n steps; 0 disables it.
	ProgressEvery int
	Verify        bool
	// Initial, when set, is the starting plan of every run and fixes Parts.
	Initial *partition.Partition
}

// Report is the outcome of one successful run.
type Report struct {
	RunID    int
	Final    *partition.Partition
	Steps    []stats.StepStats
	Summary  stats.Summary
	// WeightedMeans holds, per part, the weighted mean of
	// Settings.WeightedAttr; nil when that attribute is unset.
	WeightedMeans []float64
	Duration time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithSink persists every run to s.
func WithSink(s sink.Sink) Option { return func(r *Runner) { r.sink = s } }

// WithMetrics records progress into m.
func WithMetrics(m *metrics.Metrics) Option { return func(r *Runner) { r.metrics = m } }

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option { return func(r *Runner) { r.log = l } }

// WithWorkers bounds the number of concurrently running chains. Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic("ensemble: WithWorkers requires n >= 1")
	}

	return func(r *Runner) { r.workers = n }
}

// WithBatchID overrides the generated batch id.
func WithBatchID(id string) Option { return func(r *Runner) { r.batchID = id } }

// Runner executes chains over a shared, immutable graph.
type Runner struct {
	g       *core.Graph
	set     Settings
	sink    sink.Sink
	metrics *metrics.Metrics
	log     zerolog.Logger
	workers int
	batchID string
}

// NewRunner validates set and returns a Runner.
func NewRunner(g *core.Graph, set Settings, opts ...Option) (*Runner, error) {
	if set.Initial != nil {
		set.Parts = set.Initial.K()
	}
	if set.Parts < 1 {
		return nil, fmt.Errorf("ensemble: parts=%d < 1: %w", set.Parts, tree.ErrInvalidParts)
	}
	if set.MaxAttempts < 1 {
		set.MaxAttempts = tree.DefaultMaxAttempts
	}
	r := &Runner{g: g, set: set, log: zerolog.Nop(), workers: 1}
	for _, opt := range opts {
		opt(r)
	}
	if r.batchID == "" {
		r.batchID = uuid.NewString()
	}

	return r, nil
}

// BatchID identifies this ensemble in persisted results.
func (r *Runner) BatchID() string { return r.batchID }

// Run executes runIDs on the worker pool and waits for all of them. Reports
// of successful runs are returned sorted by run id; failures are joined into
// the error, each a *RunError.
func (r *Runner) Run(ctx context.Context, runIDs []int) ([]Report, error) {
	jobs := make(chan int)
	var (
		mu      sync.Mutex
		reports []Report
		errs    []error
		wg      sync.WaitGroup
	)
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				rep, err := r.RunOne(ctx, id)
				mu.Lock()
				if err != nil {
					errs = append(errs, err)
				} else {
					reports = append(reports, rep)
				}
				mu.Unlock()
			}
		}()
	}
	for _, id := range runIDs {
		jobs <- id
	}
	close(jobs)
	wg.Wait()

	sort.Slice(reports, func(i, j int) bool { return reports[i].RunID < reports[j].RunID })
	sort.Slice(errs, func(i, j int) bool {
		var a, b *RunError
		errors.As(errs[i], &a)
		errors.As(errs[j], &b)
		return a.RunID < b.RunID
	})
	r.log.Info().Str("batch", r.batchID).Int("ok", len(reports)).Int("failed", len(errs)).Msg("ensemble complete")

	return reports, errors.Join(errs...)
}

// RunOne executes a single run synchronously. A cancelled ctx stops the
// chain between steps and is reported under StageChain.
func (r *Runner) RunOne(ctx context.Context, runID int) (Report, error) {
	start := time.Now()
	log := r.log.With().Str("batch", r.batchID).Int("run", runID).Logger()
	if r.metrics != nil {
		r.metrics.RunsStarted.Inc()
	}
	fail := func(stage Stage, err error) (Report, error) {
		if r.metrics != nil {
			r.metrics.RunFailures.WithLabelValues(string(stage)).Inc()
		}
		log.Error().Err(err).Str("stage", string(stage)).Msg("run failed")
		return Report{}, &RunError{RunID: runID, Stage: stage, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return fail(StageChain, err)
	}
	rng := chain.NewRand(r.set.Seed, uint64(runID))
	initial, err := r.seed(rng)
	if err != nil {
		return fail(StageSeed, err)
	}

	rec := stats.NewRecorder(r.set.TotalSteps)
	final := initial
	if initial.K() >= 2 {
		final, err = r.walk(ctx, log, initial, rng, rec)
		if err != nil {
			stage := StageChain
			if errors.Is(err, chain.ErrInvalidInitial) {
				stage = StageSeed
			}
			return fail(stage, err)
		}
	} else {
		log.Info().Msg("fewer than two parts, chain skipped")
	}

	rep := Report{RunID: runID, Final: final, Steps: rec.Steps(), Summary: stats.Summarize(rec.Steps())}
	if attr := r.set.WeightedAttr; attr != "" {
		rep.WeightedMeans, err = stats.WeightedMean(final, attr)
		if err != nil {
			return fail(StageStats, err)
		}
	}
	if r.sink != nil {
		res := sink.Result{
			BatchID:       r.batchID,
			RunID:         runID,
			Final:         final,
			Steps:         rep.Steps,
			WeightedAttr:  r.set.WeightedAttr,
			WeightedMeans: rep.WeightedMeans,
		}
		if err := r.sink.Write(ctx, res); err != nil {
			return fail(StagePersist, err)
		}
	}
	rep.Duration = time.Since(start)
	if r.metrics != nil {
		r.metrics.RunsCompleted.Inc()
		r.metrics.RunDurationSec.Observe(rep.Duration.Seconds())
	}
	ev := log.Info()
	if rep.WeightedMeans != nil {
		ev = ev.Floats64("w_mean_"+r.set.WeightedAttr, rep.WeightedMeans)
	}
	ev.Int("accepted", rep.Summary.Accepted).
		Float64("cut_edges_mean", rep.Summary.CutEdgesMean).
		Dur("elapsed", rep.Duration).
		Msg("run complete")

	return rep, nil
}

func (r *Runner) seed(rng *rand.Rand) (*partition.Partition, error) {
	if r.set.Initial != nil {
		return r.set.Initial, nil
	}
	if r.set.Parts < 2 {
		return partition.New(r.g, make([]int, r.g.Len()), 1)
	}

	return tree.InitialPartition(r.g, r.set.Parts, r.set.Epsilon, rng,
		tree.WithMethod(r.set.Method), tree.WithMaxAttempts(r.set.MaxAttempts), tree.WithIdeal(r.set.Ideal))
}

// ideal is the per-part target of a k-part plan.
func (r *Runner) ideal(k int) float64 {
	if r.set.Ideal > 0 {
		return r.set.Ideal
	}

	return float64(r.g.TotalPopulation()) / float64(k)
}

// walk runs the chain from initial and returns its last state.
func (r *Runner) walk(ctx context.Context, log zerolog.Logger, initial *partition.Partition, rng *rand.Rand, rec *stats.Recorder) (*partition.Partition, error) {
	proposer, err := recom.New(recom.Config{
		Epsilon:     r.set.Epsilon,
		NodeRepeats: r.set.NodeRepeats,
		Method:      r.set.Method,
		Target:      r.set.Target,
		Pairs:       r.set.Pairs,
		Ideal:       r.set.Ideal,
	})
	if err != nil {
		return nil, err
	}
	constraint := chain.Validator(chain.WithinPercentOfIdeal(r.ideal(initial.K()), r.set.Epsilon), chain.Contiguous)

	opts := []chain.Option{chain.WithLogger(log), chain.WithObserver(rec.Observe)}
	if r.metrics != nil {
		opts = append(opts, chain.WithObserver(r.metrics.ObserveStep))
	}
	if r.set.Verify {
		opts = append(opts, chain.WithVerify())
	}
	c, err := chain.New(initial, proposer, constraint, r.set.TotalSteps, rng, opts...)
	if err != nil {
		return nil, err
	}

	err = c.Run(func(s chain.Step) error {
		if every := r.set.ProgressEvery; every > 0 && s.Index%every == 0 {
			log.Info().Int("step", s.Index).Int("cut_edges", s.Partition.CutEdgeCount()).Msg("progress")
		}
		return ctx.Err()
	})
	if r.metrics != nil {
		r.metrics.SpanningTrees.Add(float64(proposer.Stats().Trees))
	}
	if err != nil {
		return nil, err
	}

	return c.Current(), nil
}
