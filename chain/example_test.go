package chain_test

import (
	"fmt"

	"github.com/katalvlaran/redistrict/builder"
	"github.com/katalvlaran/redistrict/chain"
	"github.com/katalvlaran/redistrict/recom"
	"github.com/katalvlaran/redistrict/tree"
)

// ExampleChain runs ten ReCom steps over a 4×4 grid split into two parts.
func ExampleChain() {
	g, _ := builder.BuildGraph(nil, builder.Grid(4, 4))
	rng := chain.NewRand(42, 1)
	initial, _ := tree.InitialPartition(g, 2, 0.25, rng)
	proposal, _ := recom.New(recom.Config{Epsilon: 0.25, NodeRepeats: 10})
	c, _ := chain.New(initial, proposal, chain.WithinPercentOfIdeal(8, 0.25), 10, rng)

	conserved := 0
	_ = c.Run(func(s chain.Step) error {
		if s.Partition.Population(0)+s.Partition.Population(1) == g.TotalPopulation() {
			conserved++
		}
		return nil
	})
	fmt.Println(conserved, c.Phase())
	// Output: 10 terminated
}
