package graph_test

import (
	"fmt"
	"math"
	"testing"
	"time"

	"lintang/astarx/pkg/datastructure"
	"lintang/astarx/pkg/engine/routingalgorithm"
	"lintang/astarx/pkg/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

func TestAdjacencyList(t *testing.T) {
	t.Run("add edges and vertices", func(t *testing.T) {
		g := graph.NewAdjacencyList[string]()
		require.NoError(t, g.AddEdge("a", "b", 2))
		require.NoError(t, g.AddUndirectedEdge("b", "c", 3))
		g.AddVertex("d")
		g.AddVertex("a")

		assert.Equal(t, []string{"a", "b", "c", "d"}, g.Vertices())
		assert.Equal(t, 4, g.NumVertices())
		assert.Equal(t, 3, g.NumEdges())
		assert.True(t, g.HasVertex("d"))
		assert.False(t, g.HasVertex("e"))
		assert.Equal(t, []datastructure.WeightedEdge[string]{
			{From: "b", To: "c", Weight: 3},
		}, g.Neighbors("b"))
		assert.Empty(t, g.Neighbors("d"))
		assert.Len(t, g.Edges(), 3)
	})

	t.Run("reject negative and NaN weights", func(t *testing.T) {
		g := graph.NewAdjacencyList[int]()
		assert.ErrorIs(t, g.AddEdge(1, 2, -1), graph.ErrNegativeWeight)
		assert.ErrorIs(t, g.AddEdge(1, 2, math.NaN()), graph.ErrNegativeWeight)
		assert.Equal(t, 0, g.NumEdges())
	})

	t.Run("custom heuristic", func(t *testing.T) {
		g := graph.NewAdjacencyList[int](graph.WithHeuristic(func(v, goal int) float64 {
			return math.Abs(float64(goal - v))
		}))
		assert.Equal(t, 3.0, g.EstimatedDistanceToGoal(2, 5))
		assert.Equal(t, 0.0, graph.NewAdjacencyList[int]().EstimatedDistanceToGoal(2, 5))
	})
}

func TestGrid(t *testing.T) {
	t.Run("neighbors four directions", func(t *testing.T) {
		g := graph.NewGrid(3, 3)
		assert.Len(t, g.Neighbors(graph.Cell{X: 1, Y: 1}), 4)
		assert.Len(t, g.Neighbors(graph.Cell{X: 0, Y: 0}), 2)

		require.NoError(t, g.Block(graph.Cell{X: 1, Y: 0}))
		assert.Len(t, g.Neighbors(graph.Cell{X: 0, Y: 0}), 1)
		assert.Empty(t, g.Neighbors(graph.Cell{X: 1, Y: 0}))
	})

	t.Run("diagonal does not cut corners", func(t *testing.T) {
		g := graph.NewGrid(3, 3, graph.WithDiagonal(true))
		assert.Len(t, g.Neighbors(graph.Cell{X: 1, Y: 1}), 8)

		require.NoError(t, g.Block(graph.Cell{X: 2, Y: 1}))
		for _, e := range g.Neighbors(graph.Cell{X: 1, Y: 1}) {
			assert.NotEqual(t, graph.Cell{X: 2, Y: 2}, e.To)
			assert.NotEqual(t, graph.Cell{X: 2, Y: 0}, e.To)
		}
	})

	t.Run("costs and bounds", func(t *testing.T) {
		g := graph.NewGrid(2, 2, graph.WithDefaultCost(2))
		assert.ErrorIs(t, g.SetCost(graph.Cell{X: 5, Y: 0}, 1), graph.ErrOutOfBounds)
		assert.ErrorIs(t, g.SetCost(graph.Cell{X: 0, Y: 0}, -1), graph.ErrNegativeWeight)
		assert.ErrorIs(t, g.Block(graph.Cell{X: -1, Y: 0}), graph.ErrOutOfBounds)

		require.NoError(t, g.SetCost(graph.Cell{X: 1, Y: 1}, 0.5))
		assert.Equal(t, 0.5*2, g.EstimatedDistanceToGoal(graph.Cell{X: 0, Y: 0}, graph.Cell{X: 1, Y: 1}))
		require.NoError(t, g.SetCost(graph.Cell{X: 1, Y: 1}, 4))
		assert.Equal(t, 2.0*2, g.EstimatedDistanceToGoal(graph.Cell{X: 0, Y: 0}, graph.Cell{X: 1, Y: 1}))

		cost, err := g.Cost(graph.Cell{X: 1, Y: 1})
		require.NoError(t, err)
		assert.Equal(t, 4.0, cost)
	})

	t.Run("walled off goal is unsolvable", func(t *testing.T) {
		g := graph.NewGrid(5, 5, graph.WithDiagonal(true))
		for _, c := range []graph.Cell{{X: 3, Y: 4}, {X: 3, Y: 3}, {X: 4, Y: 3}} {
			require.NoError(t, g.Block(c))
		}
		res := routingalgorithm.Solve[graph.Cell](g, graph.Cell{X: 0, Y: 0}, graph.Cell{X: 4, Y: 4}, time.Minute)
		assert.Equal(t, routingalgorithm.Unsolvable, res.Outcome)
		assert.Equal(t, 22, res.NumStatesExplored)
	})
}

func TestHeuristics(t *testing.T) {
	a, b := graph.Cell{X: 0, Y: 0}, graph.Cell{X: 3, Y: -4}
	assert.Equal(t, 7.0, graph.ManhattanDistance(a, b))
	assert.InDelta(t, 1+3*math.Sqrt2, graph.OctileDistance(a, b), 1e-12)
	assert.Equal(t, 0.0, graph.ZeroHeuristic("x", "y"))
}

func TestGonumGraphMatchesGonumDijkstra(t *testing.T) {
	for seed := uint64(1); seed <= 10; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewSource(seed))
			n := 20 + rng.Intn(20)
			g := simple.NewWeightedDirectedGraph(0, math.Inf(1))
			for i := 0; i < n; i++ {
				g.AddNode(simple.Node(i))
			}
			for i := 0; i < n*3; i++ {
				u, v := rng.Intn(n), rng.Intn(n)
				if u == v {
					continue
				}
				g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(u), simple.Node(v), float64(1+rng.Intn(20))))
			}

			shortest := path.DijkstraFrom(simple.Node(0), g)
			adapter := graph.NewGonumGraph(g)
			for goal := int64(1); goal < int64(n); goal++ {
				_, want := shortest.To(goal)
				res := routingalgorithm.Solve[int64](adapter, 0, goal, time.Minute)
				if math.IsInf(want, 1) {
					assert.Equal(t, routingalgorithm.Unsolvable, res.Outcome)
					continue
				}
				require.Equal(t, routingalgorithm.Solved, res.Outcome)
				assert.Equal(t, want, res.Weight)
			}
		})
	}
}
