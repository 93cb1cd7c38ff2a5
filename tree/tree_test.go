package tree_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/katalvlaran/redistrict/builder"
	"github.com/katalvlaran/redistrict/core"
	"github.com/katalvlaran/redistrict/partition"
	"github.com/katalvlaran/redistrict/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grid(t *testing.T, rows, cols int) *core.Graph {
	t.Helper()
	g, err := builder.BuildGraph(nil, builder.Grid(rows, cols))
	require.NoError(t, err)

	return g
}

func all(g *core.Graph) []int {
	nodes := make([]int, g.Len())
	for i := range nodes {
		nodes[i] = i
	}

	return nodes
}

func TestBounds(t *testing.T) {
	b := tree.Around(8, 0.25)
	assert.Equal(t, tree.Bounds{Lo: 6, Hi: 10}, b)
	assert.True(t, b.Contains(6))
	assert.True(t, b.Contains(10))
	assert.False(t, b.Contains(11))
	assert.Equal(t, tree.Bounds{Lo: 12, Hi: 20}, b.Scale(2))
	assert.True(t, tree.Bounds{Lo: 2, Hi: 1}.Empty())
}

func TestParseMethod(t *testing.T) {
	m, err := tree.ParseMethod("random_mst")
	require.NoError(t, err)
	assert.Equal(t, tree.MethodRandomMST, m)
	assert.Equal(t, "random_mst", m.String())

	m, err = tree.ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, tree.MethodWilson, m)

	_, err = tree.ParseMethod("prim")
	require.Error(t, err)
}

func TestSamplers_ProduceSpanningTrees(t *testing.T) {
	g := grid(t, 4, 4)
	sub := g.Induce(all(g))
	rng := rand.New(rand.NewSource(1))

	for _, m := range []tree.Method{tree.MethodWilson, tree.MethodRandomMST} {
		t.Run(m.String(), func(t *testing.T) {
			for i := 0; i < 20; i++ {
				st, err := m.Sample(sub, rng)
				require.NoError(t, err)
				edges := st.Edges()
				require.Len(t, edges, 15)
				// Re-validating through NewSpanningTree checks membership and reach.
				_, err = tree.NewSpanningTree(sub, edges)
				require.NoError(t, err)
			}
		})
	}
}

func TestSamplers_Disconnected(t *testing.T) {
	g := grid(t, 4, 4)
	rng := rand.New(rand.NewSource(1))
	corners := g.Induce([]int{0, 15})

	_, err := tree.Wilson(corners, rng)
	require.ErrorIs(t, err, tree.ErrDisconnectedSubgraph)
	_, err = tree.RandomMST(corners, rng)
	require.ErrorIs(t, err, tree.ErrDisconnectedSubgraph)
	_, err = tree.Wilson(g.Induce(nil), rng)
	require.ErrorIs(t, err, tree.ErrDisconnectedSubgraph)
}

func TestWilson_SingleNode(t *testing.T) {
	g := grid(t, 1, 1)
	st, err := tree.Wilson(g.Induce([]int{0}), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 1, st.Len())
	assert.Empty(t, st.Edges())
}

// The 4-cycle (2×2 grid) has exactly four spanning trees, one per omitted edge.
func TestWilson_UniformOnCycle(t *testing.T) {
	g := grid(t, 2, 2)
	sub := g.Induce(all(g))
	rng := rand.New(rand.NewSource(7))

	const draws = 4000
	counts := make(map[string]int)
	for i := 0; i < draws; i++ {
		st, err := tree.Wilson(sub, rng)
		require.NoError(t, err)
		counts[fmt.Sprint(st.Edges())]++
	}
	require.Len(t, counts, 4)
	for key, n := range counts {
		assert.InDelta(t, draws/4, n, 150, "tree %s", key)
	}
}

func TestNewSpanningTree_Errors(t *testing.T) {
	g := grid(t, 2, 2) // 0-1, 0-2, 1-3, 2-3
	sub := g.Induce(all(g))

	_, err := tree.NewSpanningTree(sub, [][2]int{{0, 1}, {0, 2}})
	require.ErrorIs(t, err, tree.ErrNotATree)
	_, err = tree.NewSpanningTree(sub, [][2]int{{0, 1}, {0, 3}, {2, 3}})
	require.ErrorIs(t, err, tree.ErrNotATree, "0-3 is not an edge")
	_, err = tree.NewSpanningTree(sub, [][2]int{{0, 1}, {0, 1}, {2, 3}})
	require.ErrorIs(t, err, tree.ErrNotATree, "duplicate edge leaves 2,3 unreached")
}

func pathTree(t *testing.T, n int) *tree.SpanningTree {
	t.Helper()
	g, err := builder.BuildGraph(nil, builder.Path(n))
	require.NoError(t, err)
	sub := g.Induce(all(g))
	edges := make([][2]int, 0, n-1)
	for i := 1; i < n; i++ {
		edges = append(edges, [2]int{i - 1, i})
	}
	st, err := tree.NewSpanningTree(sub, edges)
	require.NoError(t, err)

	return st
}

func TestFindBalancedCut_Path(t *testing.T) {
	st := pathTree(t, 4)
	rng := rand.New(rand.NewSource(3))
	half := tree.Bounds{Lo: 2, Hi: 2}

	for i := 0; i < 20; i++ {
		cut, ok := tree.FindBalancedCut(st, half, half, rng)
		require.True(t, ok)
		assert.Equal(t, int64(2), cut.Population)
		require.Len(t, cut.Side, 2)
		assert.Contains(t, [][]int{{0, 1}, {2, 3}}, cut.Side)
		assert.ElementsMatch(t, []int{1, 2}, cut.Edge[:], "only the middle edge balances")
	}
}

func TestFindBalancedCut_Asymmetric(t *testing.T) {
	st := pathTree(t, 5)
	rng := rand.New(rand.NewSource(5))

	// One node on the side, four in the rest: only the end edges qualify.
	for i := 0; i < 20; i++ {
		cut, ok := tree.FindBalancedCut(st, tree.Bounds{Lo: 1, Hi: 1}, tree.Bounds{Lo: 4, Hi: 4}, rng)
		require.True(t, ok)
		assert.Equal(t, int64(1), cut.Population)
		assert.Contains(t, [][]int{{0}, {4}}, cut.Side)
	}
}

func TestFindBalancedCut_NotFound(t *testing.T) {
	st := pathTree(t, 4)
	rng := rand.New(rand.NewSource(3))

	_, ok := tree.FindBalancedCut(st, tree.Bounds{Lo: 5, Hi: 5}, tree.Bounds{Lo: 0, Hi: 10}, rng)
	assert.False(t, ok)

	_, ok = tree.FindBalancedCut(pathTree(t, 1), tree.Bounds{Lo: 0, Hi: 10}, tree.Bounds{Lo: 0, Hi: 10}, rng)
	assert.False(t, ok, "a single node has no edge to cut")
}

func TestBipartition_Grid(t *testing.T) {
	g := grid(t, 4, 4)
	sub := g.Induce(all(g))
	rng := rand.New(rand.NewSource(9))
	b := tree.Around(8, 0.25)

	cut, ok, err := tree.Bipartition(sub, b, b, tree.MethodWilson, 100, rng)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, b.Contains(cut.Population))
	assert.True(t, b.Contains(16-cut.Population))

	side := make([]int, len(cut.Side))
	for i, l := range cut.Side {
		side[i] = sub.Global(l)
	}
	assert.True(t, g.Induce(side).Connected())
}

func TestRecursiveTreePart_TwoParts(t *testing.T) {
	g := grid(t, 4, 4)
	for seed := int64(0); seed < 10; seed++ {
		p, err := tree.InitialPartition(g, 2, 0.25, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		for part := 0; part < 2; part++ {
			assert.GreaterOrEqual(t, p.Population(part), int64(6))
			assert.LessOrEqual(t, p.Population(part), int64(10))
		}
		require.NoError(t, p.VerifyContiguity())
	}
}

func TestRecursiveTreePart_FourParts(t *testing.T) {
	g := grid(t, 4, 4)
	assign, err := tree.RecursiveTreePart(g, 4, 0.1, rand.New(rand.NewSource(2)),
		tree.WithMethod(tree.MethodRandomMST))
	require.NoError(t, err)

	p, err := partition.New(g, assign, 4)
	require.NoError(t, err)
	for part := 0; part < 4; part++ {
		assert.Equal(t, int64(4), p.Population(part))
	}
	require.NoError(t, p.VerifyContiguity())
}

func TestRecursiveTreePart_Infeasible(t *testing.T) {
	g := grid(t, 4, 4)

	// Target 3.2 ± 0.32 admits no integer population.
	_, err := tree.RecursiveTreePart(g, 5, 0.1, rand.New(rand.NewSource(1)), tree.WithMaxAttempts(50))
	require.ErrorIs(t, err, tree.ErrInfeasiblePartition)

	_, err = tree.RecursiveTreePart(g, 0, 0.1, rand.New(rand.NewSource(1)))
	require.ErrorIs(t, err, tree.ErrInvalidParts)
}

func TestRecursiveTreePart_WithIdeal(t *testing.T) {
	g := grid(t, 4, 4)

	// 10 ± 20% leaves 8/8 as the only split of 16 units.
	p, err := tree.InitialPartition(g, 2, 0.2, rand.New(rand.NewSource(4)), tree.WithIdeal(10))
	require.NoError(t, err)
	assert.Equal(t, []int64{8, 8}, []int64{p.Population(0), p.Population(1)})

	// 4 ± 25% cannot cover 16 units with two parts.
	_, err = tree.RecursiveTreePart(g, 2, 0.25, rand.New(rand.NewSource(4)),
		tree.WithIdeal(4), tree.WithMaxAttempts(20))
	require.ErrorIs(t, err, tree.ErrInfeasiblePartition)
}

func TestRecursiveTreePart_SinglePart(t *testing.T) {
	g := grid(t, 3, 3)
	assign, err := tree.RecursiveTreePart(g, 1, 0.01, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, make([]int, 9), assign)
}

func TestWithMaxAttempts_Panics(t *testing.T) {
	assert.Panics(t, func() { tree.WithMaxAttempts(0) })
}
