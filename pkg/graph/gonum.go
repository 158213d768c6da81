package graph

import (
	"lintang/astarx/pkg/datastructure"

	gonum "gonum.org/v1/gonum/graph"
)

// GonumGraph adapter untuk graph gonum yang weighted & directed. vertex = node id gonum.
type GonumGraph struct {
	g gonum.WeightedDirected
}

func NewGonumGraph(g gonum.WeightedDirected) *GonumGraph {
	return &GonumGraph{g: g}
}

func (g *GonumGraph) Neighbors(id int64) []datastructure.WeightedEdge[int64] {
	it := g.g.From(id)
	edges := make([]datastructure.WeightedEdge[int64], 0, it.Len())
	for it.Next() {
		to := it.Node().ID()
		w, ok := g.g.Weight(id, to)
		if !ok {
			continue
		}
		edges = append(edges, datastructure.NewWeightedEdge(id, to, w))
	}
	return edges
}

func (g *GonumGraph) EstimatedDistanceToGoal(_, _ int64) float64 {
	return 0
}
