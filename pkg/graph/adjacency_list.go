// Package graph berisi graph yang memenuhi kontrak routingalgorithm.AStarGraph.
package graph

import (
	"errors"
	"math"

	"lintang/astarx/pkg/datastructure"
)

var (
	ErrNegativeWeight = errors.New("edge weight must be a non-negative number")
	ErrOutOfBounds    = errors.New("cell is outside the grid")
)

type AdjacencyOption[V comparable] func(*AdjacencyList[V])

// WithHeuristic pakai heuristic h, default 0 (A* jadi dijkstra)
func WithHeuristic[V comparable](h func(v, goal V) float64) AdjacencyOption[V] {
	return func(g *AdjacencyList[V]) { g.heuristic = h }
}

// AdjacencyList directed graph eksplisit. tidak aman untuk ditulis sambil di solve,
// tapi aman dibaca dari banyak goroutine setelah selesai dibangun.
type AdjacencyList[V comparable] struct {
	adj       map[V][]datastructure.WeightedEdge[V]
	vertices  []V
	numEdges  int
	heuristic func(v, goal V) float64
}

func NewAdjacencyList[V comparable](opts ...AdjacencyOption[V]) *AdjacencyList[V] {
	g := &AdjacencyList[V]{
		adj:       make(map[V][]datastructure.WeightedEdge[V]),
		heuristic: ZeroHeuristic[V],
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *AdjacencyList[V]) AddVertex(v V) {
	if _, ok := g.adj[v]; ok {
		return
	}
	g.adj[v] = nil
	g.vertices = append(g.vertices, v)
}

func (g *AdjacencyList[V]) AddEdge(from, to V, weight float64) error {
	if weight < 0 || math.IsNaN(weight) {
		return ErrNegativeWeight
	}
	g.AddVertex(from)
	g.AddVertex(to)
	g.adj[from] = append(g.adj[from], datastructure.NewWeightedEdge(from, to, weight))
	g.numEdges++
	return nil
}

func (g *AdjacencyList[V]) AddUndirectedEdge(u, v V, weight float64) error {
	if err := g.AddEdge(u, v, weight); err != nil {
		return err
	}
	return g.AddEdge(v, u, weight)
}

func (g *AdjacencyList[V]) Neighbors(v V) []datastructure.WeightedEdge[V] {
	return g.adj[v]
}

func (g *AdjacencyList[V]) EstimatedDistanceToGoal(v, goal V) float64 {
	return g.heuristic(v, goal)
}

func (g *AdjacencyList[V]) HasVertex(v V) bool {
	_, ok := g.adj[v]
	return ok
}

// Vertices urut sesuai urutan pertama kali ditambahkan
func (g *AdjacencyList[V]) Vertices() []V {
	out := make([]V, len(g.vertices))
	copy(out, g.vertices)
	return out
}

func (g *AdjacencyList[V]) NumVertices() int {
	return len(g.vertices)
}

func (g *AdjacencyList[V]) NumEdges() int {
	return g.numEdges
}

// Edges semua edge, urut per vertex asal
func (g *AdjacencyList[V]) Edges() []datastructure.WeightedEdge[V] {
	edges := make([]datastructure.WeightedEdge[V], 0, g.numEdges)
	for _, v := range g.vertices {
		edges = append(edges, g.adj[v]...)
	}
	return edges
}
