package recom_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/redistrict/builder"
	"github.com/katalvlaran/redistrict/chain"
	"github.com/katalvlaran/redistrict/core"
	"github.com/katalvlaran/redistrict/partition"
	"github.com/katalvlaran/redistrict/recom"
	"github.com/katalvlaran/redistrict/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ chain.Proposal = (*recom.Proposer)(nil)

func build(t *testing.T, c builder.Constructor) *core.Graph {
	t.Helper()
	g, err := builder.BuildGraph(nil, c)
	require.NoError(t, err)

	return g
}

func TestNew_Validation(t *testing.T) {
	_, err := recom.New(recom.Config{Epsilon: 1, NodeRepeats: 1})
	require.ErrorIs(t, err, recom.ErrInvalidConfig)
	_, err = recom.New(recom.Config{Epsilon: -0.1, NodeRepeats: 1})
	require.ErrorIs(t, err, recom.ErrInvalidConfig)
	_, err = recom.New(recom.Config{Epsilon: 0.1})
	require.ErrorIs(t, err, recom.ErrInvalidConfig)
}

func TestParse(t *testing.T) {
	tg, err := recom.ParseTarget("ideal")
	require.NoError(t, err)
	assert.Equal(t, recom.TargetIdeal, tg)
	_, err = recom.ParseTarget("odd")
	require.ErrorIs(t, err, recom.ErrInvalidConfig)

	pr, err := recom.ParsePairs("cut_edge")
	require.NoError(t, err)
	assert.Equal(t, recom.PairByCutEdge, pr)
	_, err = recom.ParsePairs("odd")
	require.ErrorIs(t, err, recom.ErrInvalidConfig)
}

func TestPropose_GridHalves(t *testing.T) {
	g := build(t, builder.Grid(4, 4))
	a := make([]int, 16)
	for v := range a {
		a[v] = v % 4 / 2
	}
	p, err := partition.New(g, a, 2)
	require.NoError(t, err)

	cases := []struct {
		name string
		cfg  recom.Config
	}{
		{"wilson/split_even", recom.Config{Epsilon: 0.25, NodeRepeats: 20}},
		{"mst/ideal/cut_edge", recom.Config{Epsilon: 0.25, NodeRepeats: 20,
			Method: tree.MethodRandomMST, Target: recom.TargetIdeal, Pairs: recom.PairByCutEdge}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := recom.New(tc.cfg)
			require.NoError(t, err)
			rng := rand.New(rand.NewSource(4))

			for i := 0; i < 25; i++ {
				next, ok, err := r.Propose(p, rng)
				require.NoError(t, err)
				require.True(t, ok)
				require.NoError(t, next.Verify())
				require.NoError(t, next.VerifyContiguity())
				for part := 0; part < 2; part++ {
					assert.GreaterOrEqual(t, next.Population(part), int64(6))
					assert.LessOrEqual(t, next.Population(part), int64(10))
				}
				p = next
			}
			s := r.Stats()
			assert.Equal(t, int64(25), s.Calls)
			assert.Equal(t, int64(25), s.Found)
			assert.GreaterOrEqual(t, s.Trees, int64(25))
		})
	}
}

func TestPropose_LeavesOtherPartsAlone(t *testing.T) {
	g := build(t, builder.Grid(3, 6))
	a := make([]int, 18)
	for v := range a {
		a[v] = v % 6 / 2 // three 3×2 column blocks
	}
	p, err := partition.New(g, a, 3)
	require.NoError(t, err)
	r, err := recom.New(recom.Config{Epsilon: 0.5, NodeRepeats: 50})
	require.NoError(t, err)

	next, ok, err := r.Propose(p, rand.New(rand.NewSource(8)))
	require.NoError(t, err)
	require.True(t, ok)

	changed := make(map[int]struct{})
	for _, v := range next.Moved() {
		changed[p.Part(v)] = struct{}{}
		changed[next.Part(v)] = struct{}{}
	}
	assert.LessOrEqual(t, len(changed), 2)
	for part := 0; part < 3; part++ {
		if _, ok := changed[part]; !ok {
			assert.Equal(t, p.Members(part), next.Members(part))
		}
	}
}

func TestPropose_NotFound(t *testing.T) {
	g := build(t, builder.Path(3))
	p, err := partition.New(g, []int{0, 0, 1}, 2)
	require.NoError(t, err)
	r, err := recom.New(recom.Config{Epsilon: 0, NodeRepeats: 7})
	require.NoError(t, err)

	// Merged population 3 cannot split into 1.5 + 1.5.
	next, ok, err := r.Propose(p, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, next)
	assert.Equal(t, recom.Stats{Calls: 1, Trees: 7, NotFound: 1}, r.Stats())
}

func TestPropose_IdealOverride(t *testing.T) {
	g := build(t, builder.Path(4))
	p, err := partition.New(g, []int{0, 0, 1, 1}, 2)
	require.NoError(t, err)

	r, err := recom.New(recom.Config{Epsilon: 0, NodeRepeats: 3, Target: recom.TargetIdeal})
	require.NoError(t, err)
	_, ok, err := r.Propose(p, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.True(t, ok, "total/K = 2 splits 2+2")

	r, err = recom.New(recom.Config{Epsilon: 0, NodeRepeats: 3, Target: recom.TargetIdeal, Ideal: 3})
	require.NoError(t, err)
	_, ok, err = r.Propose(p, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.False(t, ok, "3+3 cannot cover a merged population of 4")
}

func TestPropose_SinglePart(t *testing.T) {
	g := build(t, builder.Path(4))
	p, err := partition.New(g, make([]int, 4), 1)
	require.NoError(t, err)
	r, err := recom.New(recom.Config{Epsilon: 0.1, NodeRepeats: 1})
	require.NoError(t, err)

	_, ok, err := r.Propose(p, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPropose_DisconnectedUnionIsFatal(t *testing.T) {
	g := build(t, builder.Path(5))
	// Part 0 = {0,4} is split; every pair containing it induces a broken union.
	p, err := partition.New(g, []int{0, 1, 2, 2, 0}, 3)
	require.NoError(t, err)
	r, err := recom.New(recom.Config{Epsilon: 0.9, NodeRepeats: 3})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(2))
	var fatal error
	for i := 0; i < 30 && fatal == nil; i++ {
		_, _, fatal = r.Propose(p, rng)
	}
	require.ErrorIs(t, fatal, tree.ErrDisconnectedSubgraph)
}
