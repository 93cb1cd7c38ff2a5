package partition_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/redistrict/builder"
	"github.com/katalvlaran/redistrict/core"
	"github.com/katalvlaran/redistrict/partition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// grid4 returns the 4×4 unit-population grid; node index = 4*r + c.
func grid4(t *testing.T) *core.Graph {
	t.Helper()
	g, err := builder.BuildGraph(nil, builder.Grid(4, 4))
	require.NoError(t, err)

	return g
}

// halves assigns columns 0-1 to part 0 and columns 2-3 to part 1.
func halves(g *core.Graph) []int {
	a := make([]int, g.Len())
	for v := range a {
		if v%4 >= 2 {
			a[v] = 1
		}
	}

	return a
}

func TestNew_Halves(t *testing.T) {
	g := grid4(t)
	p, err := partition.New(g, halves(g), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, p.K())
	assert.Equal(t, int64(8), p.Population(0))
	assert.Equal(t, int64(8), p.Population(1))
	assert.Equal(t, 4, p.CutEdgeCount())
	assert.Len(t, p.CutEdges(), 4)
	assert.Equal(t, []partition.Pair{{A: 0, B: 1}}, p.AdjacentPairs())
	assert.Equal(t, 4, p.PairCutCount(1, 0))
	assert.Equal(t, []int{0, 1, 4, 5, 8, 9, 12, 13}, p.Members(0))
	assert.True(t, p.Contiguous(0))
	assert.Nil(t, p.Parent())
	require.NoError(t, p.Verify())
	require.NoError(t, p.VerifyContiguity())
}

func TestNew_Errors(t *testing.T) {
	g := grid4(t)

	_, err := partition.New(g, halves(g)[:3], 2)
	require.ErrorIs(t, err, partition.ErrInvalidAssignment)

	bad := halves(g)
	bad[0] = 2
	_, err = partition.New(g, bad, 2)
	require.ErrorIs(t, err, partition.ErrInvalidAssignment)

	_, err = partition.New(g, make([]int, g.Len()), 2)
	require.ErrorIs(t, err, partition.ErrEmptyPart)

	_, err = partition.New(g, make([]int, g.Len()), 0)
	require.ErrorIs(t, err, partition.ErrInvalidAssignment)
}

func TestAssign_IncrementalMatchesRecompute(t *testing.T) {
	g := grid4(t)
	p, err := partition.New(g, halves(g), 2)
	require.NoError(t, err)

	// Move (0,2) to part 0: one horizontal cut disappears, two appear.
	next, err := p.Assign(2, 0)
	require.NoError(t, err)
	require.NoError(t, next.Verify())
	assert.Equal(t, int64(9), next.Population(0))
	assert.Equal(t, int64(7), next.Population(1))
	assert.Equal(t, 4-1+2, next.CutEdgeCount())
	assert.Equal(t, []int{2}, next.Moved())
	require.NotNil(t, next.Parent())
	assert.Nil(t, next.Parent().Parent(), "only one ancestor is kept")

	// The receiver is untouched.
	assert.Equal(t, 1, p.Part(2))
	assert.Equal(t, int64(8), p.Population(0))
	assert.Equal(t, 4, p.CutEdgeCount())
	require.NoError(t, p.Verify())
}

func TestFlip_RandomWalkStaysConsistent(t *testing.T) {
	g := grid4(t)
	a := make([]int, g.Len())
	for v := range a {
		a[v] = v / 4 // one part per row
	}
	p, err := partition.New(g, a, 4)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 300; i++ {
		moves := make([]partition.Move, 1+rng.Intn(3))
		for j := range moves {
			moves[j] = partition.Move{Node: rng.Intn(g.Len()), Part: rng.Intn(4)}
		}
		next, err := p.Flip(moves)
		if err != nil {
			require.ErrorIs(t, err, partition.ErrEmptyPart)
			continue
		}
		require.NoError(t, next.Verify(), "step %d", i)

		var total int64
		for part := 0; part < next.K(); part++ {
			total += next.Population(part)
		}
		require.Equal(t, g.TotalPopulation(), total, "population is conserved")
		p = next
	}
}

func TestFlip_NoOpAndRoundTrip(t *testing.T) {
	g := grid4(t)
	p, err := partition.New(g, halves(g), 2)
	require.NoError(t, err)

	// 2 → part 0 → back to part 1 within one flip: nothing moved.
	next, err := p.Flip([]partition.Move{{Node: 2, Part: 0}, {Node: 2, Part: 1}})
	require.NoError(t, err)
	assert.Empty(t, next.Moved())
	assert.Equal(t, p.Members(1), next.Members(1))
	require.NoError(t, next.Verify())

	_, err = p.Flip([]partition.Move{{Node: 99, Part: 0}})
	require.ErrorIs(t, err, partition.ErrInvalidAssignment)
}

func TestVerifyContiguity_DetectsSplitPart(t *testing.T) {
	g := grid4(t)
	a := halves(g)
	a[0] = 1 // (0,0) joins the right half without touching it
	p, err := partition.New(g, a, 2)
	require.NoError(t, err)

	assert.False(t, p.Contiguous(1))
	require.ErrorIs(t, p.VerifyContiguity(), partition.ErrNotContiguous)
}

func TestFromAttribute(t *testing.T) {
	g, err := builder.BuildGraph([]builder.BuilderOption{
		builder.WithAttrs(func(i int) map[string]any {
			if i%4 < 2 {
				return map[string]any{"SCHOOL_ID": "west"}
			}
			return map[string]any{"SCHOOL_ID": "east"}
		}),
	}, builder.Grid(4, 4))
	require.NoError(t, err)

	p, labels, err := partition.FromAttribute(g, "SCHOOL_ID")
	require.NoError(t, err)
	assert.Equal(t, []string{"east", "west"}, labels)
	assert.Equal(t, 1, p.Part(0), "west sorts after east")
	assert.Equal(t, 4, p.CutEdgeCount())

	_, _, err = partition.FromAttribute(g, "missing")
	require.ErrorIs(t, err, partition.ErrInvalidAssignment)
}
