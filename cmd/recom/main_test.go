package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/redistrict/builder"
	"github.com/katalvlaran/redistrict/chain"
	"github.com/katalvlaran/redistrict/config"
	"github.com/katalvlaran/redistrict/ensemble"
	"github.com/katalvlaran/redistrict/metrics"
	"github.com/katalvlaran/redistrict/recom"
	"github.com/katalvlaran/redistrict/tree"
)

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.RunsStarted.Inc()
	h := router(reg, "b-1")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok batch=b-1\n", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "recom_runs_started_total 1")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSettingsAndRunIDs(t *testing.T) {
	t.Setenv("AWS_BATCH_JOB_ARRAY_INDEX", "")
	c := config.New()
	c.Set("chain.parts", 3)
	c.Set("chain.method", "random_mst")
	c.Set("chain.pairs", "cut_edge")
	c.Set("ensemble.runs", 10)
	c.Set("ensemble.size", 3)
	c.Set("ensemble.rank", 2)

	set, err := settings(c)
	require.NoError(t, err)
	assert.Equal(t, 3, set.Parts)
	assert.Equal(t, tree.MethodRandomMST, set.Method)
	assert.Equal(t, recom.PairByCutEdge, set.Pairs)
	assert.Equal(t, recom.TargetSplitEven, set.Target)
	assert.Zero(t, set.Ideal)
	assert.Empty(t, set.WeightedAttr)

	ids, err := runIDs(c)
	require.NoError(t, err)
	assert.Equal(t, []int{8, 9, 10}, ids)

	t.Setenv("AWS_BATCH_JOB_ARRAY_INDEX", "4")
	ids, err = runIDs(c)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, ids)

	t.Setenv("AWS_BATCH_JOB_ARRAY_INDEX", "x")
	_, err = runIDs(c)
	require.Error(t, err)
}

// TestFromPlan uses a 4×4 grid whose existing plan is far outside ε: zone A
// holds the first row (4 units), zone B the other 12.
func TestFromPlan(t *testing.T) {
	g, err := builder.BuildGraph([]builder.BuilderOption{
		builder.WithAttrs(func(i int) map[string]any {
			if i < 4 {
				return map[string]any{"SCHOOL_ID": "A"}
			}
			return map[string]any{"SCHOOL_ID": "B"}
		}),
	}, builder.Grid(4, 4))
	require.NoError(t, err)
	base := ensemble.Settings{Epsilon: 0.25, NodeRepeats: 10, TotalSteps: 30, Seed: 42, MaxAttempts: 200, Verify: true}

	c := config.New()
	c.Set("partition.attribute", "SCHOOL_ID")
	set, err := fromPlan(c, g, base)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Parts)
	assert.Nil(t, set.Initial, "runs draw their own seed")

	r, err := ensemble.NewRunner(g, set)
	require.NoError(t, err)
	for _, run := range []int{1, 2} {
		rep, err := r.RunOne(context.Background(), run)
		require.NoError(t, err)
		require.Len(t, rep.Steps, 30)
		for _, s := range rep.Steps {
			assert.GreaterOrEqual(t, s.MinPop, int64(6))
			assert.LessOrEqual(t, s.MaxPop, int64(10))
		}
	}

	t.Run("start from plan", func(t *testing.T) {
		c := config.New()
		c.Set("partition.attribute", "SCHOOL_ID")
		c.Set("partition.start_from_attribute", true)
		set, err := fromPlan(c, g, base)
		require.NoError(t, err)
		require.NotNil(t, set.Initial)

		r, err := ensemble.NewRunner(g, set)
		require.NoError(t, err)
		_, err = r.RunOne(context.Background(), 1)
		require.ErrorIs(t, err, chain.ErrInvalidInitial)
	})

	t.Run("conflicting parts", func(t *testing.T) {
		conflict := base
		conflict.Parts = 3
		_, err := fromPlan(c, g, conflict)
		require.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("missing attribute", func(t *testing.T) {
		c := config.New()
		c.Set("partition.attribute", "ZONE")
		_, err := fromPlan(c, g, base)
		var re *ensemble.RunError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, ensemble.StageLoad, re.Stage)
	})

	t.Run("no attribute", func(t *testing.T) {
		got, err := fromPlan(config.New(), g, base)
		require.NoError(t, err)
		assert.Equal(t, base, got)
	})
}
