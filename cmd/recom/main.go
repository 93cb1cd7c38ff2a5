// SPDX-License-Identifier: MIT

// Command recom runs this worker's share of a ReCom ensemble: it loads the
// graph, assigns run ids by rank, runs the chains and persists every run.
//
// Settings come from defaults, -config, .env and RECOM_* variables. When
// AWS_BATCH_JOB_ARRAY_INDEX is set, only the run of that array index is run.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/katalvlaran/redistrict/builder"
	"github.com/katalvlaran/redistrict/config"
	"github.com/katalvlaran/redistrict/core"
	"github.com/katalvlaran/redistrict/ensemble"
	"github.com/katalvlaran/redistrict/metrics"
	"github.com/katalvlaran/redistrict/partition"
	"github.com/katalvlaran/redistrict/recom"
	"github.com/katalvlaran/redistrict/sink"
	"github.com/katalvlaran/redistrict/tree"
)

func main() {
	configFile := flag.String("config", "", "optional config file (yaml, json, toml)")
	envFile := flag.String("env", ".env", "optional dotenv file")
	flag.Parse()

	cfg, err := config.Load(*envFile, *configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := cfg.Logger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("recom failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	g, err := builder.LoadJSON(cfg.GraphPath(), cfg.PopAttr())
	if err != nil {
		return &ensemble.RunError{Stage: ensemble.StageLoad, Err: err}
	}
	log.Info().Int("units", g.Len()).Int("edges", g.EdgeCount()).Int64("population", g.TotalPopulation()).Msg("graph loaded")

	set, err := settings(cfg)
	if err != nil {
		return err
	}
	if set, err = fromPlan(cfg, g, set); err != nil {
		return err
	}
	if attr := cfg.PlanAttribute(); attr != "" {
		log.Info().Str("attribute", attr).Int("parts", set.Parts).Bool("start_from_plan", set.Initial != nil).
			Float64("ideal", float64(g.TotalPopulation())/float64(set.Parts)).Msg("part count from attribute")
	}

	ids, err := runIDs(cfg)
	if err != nil {
		return err
	}

	sinks, err := openSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := sinks.Close(); err != nil {
			log.Warn().Err(err).Msg("closing sinks")
		}
	}()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	runner, err := ensemble.NewRunner(g, set,
		ensemble.WithSink(sinks),
		ensemble.WithMetrics(m),
		ensemble.WithLogger(log),
		ensemble.WithWorkers(cfg.Workers()),
	)
	if err != nil {
		return err
	}

	if addr := cfg.MetricsAddr(); addr != "" {
		srv := &http.Server{Addr: addr, Handler: router(reg, runner.BatchID()), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Str("addr", addr).Msg("metrics server")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	log.Info().Str("batch", runner.BatchID()).Ints("runs", ids).Int("workers", cfg.Workers()).Msg("ensemble start")
	_, err = runner.Run(ctx, ids)

	return err
}

func settings(cfg *config.Config) (ensemble.Settings, error) {
	method, err := tree.ParseMethod(cfg.Method())
	if err != nil {
		return ensemble.Settings{}, err
	}
	target, err := recom.ParseTarget(cfg.Target())
	if err != nil {
		return ensemble.Settings{}, err
	}
	pairs, err := recom.ParsePairs(cfg.Pairs())
	if err != nil {
		return ensemble.Settings{}, err
	}

	return ensemble.Settings{
		Parts:         cfg.Parts(),
		Epsilon:       cfg.Epsilon(),
		NodeRepeats:   cfg.NodeRepeats(),
		TotalSteps:    cfg.TotalSteps(),
		Seed:          cfg.Seed(),
		Method:        method,
		Target:        target,
		Pairs:         pairs,
		MaxAttempts:   cfg.MaxAttempts(),
		Ideal:         cfg.Ideal(),
		WeightedAttr:  cfg.WeightedAttr(),
		ProgressEvery: cfg.ProgressEvery(),
		Verify:        cfg.Verify(),
	}, nil
}

// fromPlan derives the part count from the existing plan in
// partition.attribute. Every run still draws its own recursive seed unless
// partition.start_from_attribute asks to start from that plan.
func fromPlan(cfg *config.Config, g *core.Graph, set ensemble.Settings) (ensemble.Settings, error) {
	attr := cfg.PlanAttribute()
	if attr == "" {
		return set, nil
	}
	p, labels, err := partition.FromAttribute(g, attr)
	if err != nil {
		return set, &ensemble.RunError{Stage: ensemble.StageLoad, Err: err}
	}
	if set.Parts != 0 && set.Parts != len(labels) {
		return set, fmt.Errorf("chain.parts=%d but %s has %d values: %w", set.Parts, attr, len(labels), config.ErrInvalidConfig)
	}
	set.Parts = len(labels)
	if cfg.StartFromPlan() {
		set.Initial = p
	}

	return set, nil
}

func runIDs(cfg *config.Config) ([]int, error) {
	if idx := os.Getenv("AWS_BATCH_JOB_ARRAY_INDEX"); idx != "" {
		n, err := strconv.Atoi(idx)
		if err != nil {
			return nil, fmt.Errorf("AWS_BATCH_JOB_ARRAY_INDEX=%q: %w", idx, err)
		}
		id, err := ensemble.RunFromArrayIndex(n)
		if err != nil {
			return nil, err
		}

		return []int{id}, nil
	}
	strategy, err := ensemble.ParseStrategy(cfg.Strategy())
	if err != nil {
		return nil, err
	}

	return ensemble.Assign(cfg.Runs(), cfg.Size(), cfg.Rank(), strategy)
}

func openSinks(ctx context.Context, cfg *config.Config) (sink.Multi, error) {
	var out sink.Multi
	csvSink, err := sink.NewCSV(cfg.OutputDir())
	if err != nil {
		return nil, err
	}
	out = append(out, csvSink)

	if addr := cfg.RedisAddr(); addr != "" {
		rs, err := sink.OpenRedis(ctx, addr, cfg.RedisPassword(), cfg.RedisDB(), "")
		if err != nil {
			_ = out.Close()
			return nil, err
		}
		out = append(out, rs)
	}
	if dsn := cfg.PostgresDSN(); dsn != "" {
		ps, err := sink.OpenPostgres(ctx, dsn)
		if err != nil {
			_ = out.Close()
			return nil, err
		}
		out = append(out, ps)
	}

	return out, nil
}

func router(g prometheus.Gatherer, batch string) http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", metrics.Handler(g)).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprintf(w, "ok batch=%s\n", batch)
	}).Methods(http.MethodGet)

	return r
}
