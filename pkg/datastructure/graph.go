package datastructure

import (
	"github.com/twpayne/go-polyline"
)

// WeightedEdge edge berarah from -> to dengan weight >= 0
type WeightedEdge[V comparable] struct {
	From   V
	To     V
	Weight float64
}

func NewWeightedEdge[V comparable](from, to V, weight float64) WeightedEdge[V] {
	return WeightedEdge[V]{
		From:   from,
		To:     to,
		Weight: weight,
	}
}

// RenderPath encode urutan koordinat jadi google polyline
func RenderPath(path []Coordinate) string {
	coords := make([][]float64, 0, len(path))
	for _, p := range path {
		coords = append(coords, []float64{p.Lat, p.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}
