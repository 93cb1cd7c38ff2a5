package builder_test

import (
	"strings"
	"testing"

	"github.com/katalvlaran/redistrict/builder"
	"github.com/katalvlaran/redistrict/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid_Shape(t *testing.T) {
	g, err := builder.BuildGraph(nil, builder.Grid(4, 4))
	require.NoError(t, err)

	assert.Equal(t, 16, g.Len())
	assert.Equal(t, 24, g.EdgeCount(), "2·r·c − r − c edges for a 4×4 grid")
	assert.Equal(t, int64(16), g.TotalPopulation())

	corner, ok := g.Index(builder.GridID(0, 0))
	require.True(t, ok)
	assert.Len(t, g.Neighbors(corner), 2)
	center, ok := g.Index(builder.GridID(1, 1))
	require.True(t, ok)
	assert.Len(t, g.Neighbors(center), 4)
}

func TestGrid_Errors(t *testing.T) {
	_, err := builder.BuildGraph(nil, builder.Grid(0, 3))
	require.ErrorIs(t, err, builder.ErrTooFewVertices)

	_, err = builder.BuildGraph(nil, nil)
	require.ErrorIs(t, err, builder.ErrConstructFailed)

	// Two constructors reuse IDs "0".."2": duplicates surface as data errors.
	_, err = builder.BuildGraph(nil, builder.Path(3), builder.Path(3))
	require.ErrorIs(t, err, core.ErrDuplicateUnit)
}

func TestPopulationFn_Seeded(t *testing.T) {
	opts := []builder.BuilderOption{
		builder.WithSeed(7),
		builder.WithPopulationFn(builder.UniformPopulationFn(10, 20)),
	}
	g1, err := builder.BuildGraph(opts, builder.Grid(3, 3))
	require.NoError(t, err)
	g2, err := builder.BuildGraph([]builder.BuilderOption{
		builder.WithSeed(7),
		builder.WithPopulationFn(builder.UniformPopulationFn(10, 20)),
	}, builder.Grid(3, 3))
	require.NoError(t, err)

	for i := 0; i < g1.Len(); i++ {
		p := g1.Population(i)
		assert.GreaterOrEqual(t, p, int64(10))
		assert.LessOrEqual(t, p, int64(20))
		assert.Equal(t, p, g2.Population(i), "same seed, same populations")
	}
	assert.Equal(t, int64(5), builder.UniformPopulationFn(5, 9)(nil), "nil rng yields min")
}

func TestPopulationFn_Panics(t *testing.T) {
	assert.Panics(t, func() { builder.ConstantPopulationFn(0) })
	assert.Panics(t, func() { builder.UniformPopulationFn(5, 4) })
	assert.Panics(t, func() { builder.WithPopulationFn(nil) })
	assert.Panics(t, func() { builder.WithRand(nil) })
}

func TestPath_WithAttrs(t *testing.T) {
	g, err := builder.BuildGraph([]builder.BuilderOption{
		builder.WithIDScheme(func(i int) string { return "P" + string(rune('a'+i)) }),
		builder.WithAttrs(func(i int) map[string]any { return map[string]any{"plan": i % 2} }),
	}, builder.Path(4))
	require.NoError(t, err)

	i, ok := g.Index("Pc")
	require.True(t, ok)
	v, ok := g.Attr(i, "plan")
	require.True(t, ok)
	assert.Equal(t, 0, v)
	assert.Equal(t, 3, g.EdgeCount())
}

const triangleJSON = `{
  "directed": false,
  "multigraph": false,
  "nodes": [
    {"id": "A", "pop": 10, "SCHOOL_ID": "s1", "indinc": 35000.5},
    {"id": 2,   "pop": 12.0, "SCHOOL_ID": "s1"},
    {"id": "C", "pop": 8, "SCHOOL_ID": "s2"}
  ],
  "adjacency": [
    [{"id": 2}, {"id": "C"}],
    [{"id": "A"}, {"id": "C"}],
    [{"id": "A"}, {"id": 2}]
  ]
}`

func TestReadJSON(t *testing.T) {
	g, err := builder.ReadJSON(strings.NewReader(triangleJSON), "pop")
	require.NoError(t, err)

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 3, g.EdgeCount(), "symmetric adjacency rows are merged")
	assert.Equal(t, int64(30), g.TotalPopulation())

	b, ok := g.Index("2")
	require.True(t, ok, "numeric ids are rendered as strings")
	assert.Equal(t, int64(12), g.Population(b))

	a, _ := g.Index("A")
	inc, ok := g.Attr(a, "indinc")
	require.True(t, ok)
	assert.InDelta(t, 35000.5, inc, 1e-9)
	plan, _ := g.Attr(a, "SCHOOL_ID")
	assert.Equal(t, "s1", plan)
}

func TestReadJSON_Errors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want error
	}{
		{"BadJSON", `{"nodes": [`, builder.ErrBadInput},
		{"RowMismatch", `{"nodes": [{"id": "A", "pop": 1}], "adjacency": []}`, builder.ErrBadInput},
		{"MissingPop", `{"nodes": [{"id": "A"}], "adjacency": [[]]}`, builder.ErrBadInput},
		{"FractionalPop", `{"nodes": [{"id": "A", "pop": 1.5}], "adjacency": [[]]}`, builder.ErrBadInput},
		{"MissingID", `{"nodes": [{"pop": 1}], "adjacency": [[]]}`, builder.ErrBadInput},
		{"UnknownNeighbor", `{"nodes": [{"id": "A", "pop": 1}], "adjacency": [[{"id": "Z"}]]}`, core.ErrUnknownUnit},
		{"DuplicateID", `{"nodes": [{"id": "A", "pop": 1}, {"id": "A", "pop": 1}], "adjacency": [[], []]}`, core.ErrDuplicateUnit},
		{"NegativePop", `{"nodes": [{"id": "A", "pop": -3}], "adjacency": [[]]}`, core.ErrBadPopulation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := builder.ReadJSON(strings.NewReader(tc.doc), "pop")
			require.ErrorIs(t, err, tc.want)
		})
	}
}
