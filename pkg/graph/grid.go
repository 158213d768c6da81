package graph

import (
	"math"

	"lintang/astarx/pkg/datastructure"
)

type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type GridOption func(*Grid)

// WithDiagonal izinkan gerakan diagonal (8 arah), default 4 arah
func WithDiagonal(allow bool) GridOption {
	return func(g *Grid) { g.diagonal = allow }
}

// WithDefaultCost cost masuk ke setiap cell, default 1
func WithDefaultCost(cost float64) GridOption {
	return func(g *Grid) {
		for i := range g.costs {
			g.costs[i] = cost
		}
		g.minCost = cost
	}
}

// Grid implicit graph: neighbors dihitung saat diminta, tidak ada edge yang disimpan.
// weight edge a -> b = cost(b), dikali sqrt(2) kalau diagonal.
type Grid struct {
	width, height int
	costs         []float64
	blocked       []bool
	diagonal      bool
	minCost       float64
}

func NewGrid(width, height int, opts ...GridOption) *Grid {
	g := &Grid{
		width:   width,
		height:  height,
		costs:   make([]float64, width*height),
		blocked: make([]bool, width*height),
		minCost: 1,
	}
	for i := range g.costs {
		g.costs[i] = 1
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

func (g *Grid) idx(c Cell) int {
	return c.Y*g.width + c.X
}

func (g *Grid) SetCost(c Cell, cost float64) error {
	if !g.InBounds(c) {
		return ErrOutOfBounds
	}
	if cost < 0 || math.IsNaN(cost) {
		return ErrNegativeWeight
	}
	old := g.costs[g.idx(c)]
	g.costs[g.idx(c)] = cost
	if cost < g.minCost {
		g.minCost = cost
	} else if old == g.minCost {
		g.recomputeMinCost()
	}
	return nil
}

func (g *Grid) Cost(c Cell) (float64, error) {
	if !g.InBounds(c) {
		return 0, ErrOutOfBounds
	}
	return g.costs[g.idx(c)], nil
}

func (g *Grid) Block(c Cell) error {
	if !g.InBounds(c) {
		return ErrOutOfBounds
	}
	g.blocked[g.idx(c)] = true
	return nil
}

func (g *Grid) IsBlocked(c Cell) bool {
	return !g.InBounds(c) || g.blocked[g.idx(c)]
}

func (g *Grid) recomputeMinCost() {
	g.minCost = math.Inf(1)
	for _, c := range g.costs {
		if c < g.minCost {
			g.minCost = c
		}
	}
}

var (
	orthogonalDirs = []Cell{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
	diagonalDirs   = []Cell{{1, 1}, {1, -1}, {-1, -1}, {-1, 1}}
)

func (g *Grid) Neighbors(c Cell) []datastructure.WeightedEdge[Cell] {
	if g.IsBlocked(c) {
		return nil
	}
	edges := make([]datastructure.WeightedEdge[Cell], 0, 8)
	for _, d := range orthogonalDirs {
		n := Cell{c.X + d.X, c.Y + d.Y}
		if g.IsBlocked(n) {
			continue
		}
		edges = append(edges, datastructure.NewWeightedEdge(c, n, g.costs[g.idx(n)]))
	}
	if !g.diagonal {
		return edges
	}
	for _, d := range diagonalDirs {
		n := Cell{c.X + d.X, c.Y + d.Y}
		// tidak boleh motong sudut tembok
		if g.IsBlocked(n) || g.IsBlocked(Cell{c.X + d.X, c.Y}) || g.IsBlocked(Cell{c.X, c.Y + d.Y}) {
			continue
		}
		edges = append(edges, datastructure.NewWeightedEdge(c, n, g.costs[g.idx(n)]*math.Sqrt2))
	}
	return edges
}

// EstimatedDistanceToGoal manhattan / octile dikali cost cell termurah, admissible & consistent.
func (g *Grid) EstimatedDistanceToGoal(c, goal Cell) float64 {
	if g.diagonal {
		return g.minCost * OctileDistance(c, goal)
	}
	return g.minCost * ManhattanDistance(c, goal)
}
