package graph

import (
	"math"
)

func ZeroHeuristic[V comparable](_, _ V) float64 {
	return 0
}

// ManhattanDistance jumlah langkah minimum di grid 4 arah
func ManhattanDistance(a, b Cell) float64 {
	return math.Abs(float64(a.X-b.X)) + math.Abs(float64(a.Y-b.Y))
}

// OctileDistance jarak minimum di grid 8 arah, langkah diagonal = sqrt(2)
func OctileDistance(a, b Cell) float64 {
	dx := math.Abs(float64(a.X - b.X))
	dy := math.Abs(float64(a.Y - b.Y))
	return (dx + dy) + (math.Sqrt2-2)*math.Min(dx, dy)
}
