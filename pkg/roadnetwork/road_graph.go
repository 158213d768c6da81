package roadnetwork

import (
	"errors"
	"math"

	"lintang/astarx/pkg/datastructure"
	"lintang/astarx/pkg/geo"

	"github.com/dhconnelly/rtreego"
)

var (
	ErrEmptyGraph         = errors.New("road network has no vertex")
	ErrVertexNotFound     = errors.New("vertex not found in road network")
	ErrInadmissibleWeight = errors.New("edge weight is shorter than the great circle distance between its endpoints")
)

// tolerance rect vertex di rtree (derajat)
const tol = 0.0001

type vertexRect struct {
	location rtreego.Point
	id       int32
}

func (v *vertexRect) Bounds() rtreego.Rect {
	return v.location.ToRect(tol)
}

// RoadGraph graph jalan, vertex = index int32, weight edge dalam meter.
// heuristic = jarak great circle ke goal, admissible selama weight edge >= jarak great circle endpointnya.
type RoadGraph struct {
	coords []datastructure.Coordinate
	out    [][]datastructure.WeightedEdge[int32]
	rtree  *rtreego.Rtree
	edges  int
}

func NewRoadGraph() *RoadGraph {
	return &RoadGraph{
		rtree: rtreego.NewTree(2, 25, 50), // 2 dimension, 25 min entries dan 50 max entries
	}
}

func (g *RoadGraph) AddVertex(lat, lon float64) int32 {
	id := int32(len(g.coords))
	g.coords = append(g.coords, datastructure.NewCoordinate(lat, lon))
	g.out = append(g.out, nil)
	g.rtree.Insert(&vertexRect{location: rtreego.Point{lat, lon}, id: id})
	return id
}

func (g *RoadGraph) has(id int32) bool {
	return id >= 0 && int(id) < len(g.coords)
}

// AddEdge edge from -> to dengan weight = jarak great circle
func (g *RoadGraph) AddEdge(from, to int32) error {
	if !g.has(from) || !g.has(to) {
		return ErrVertexNotFound
	}
	return g.addEdge(from, to, g.distance(from, to))
}

// AddWeightedEdge weight custom, misal panjang polyline way osm. tidak boleh lebih pendek dari jarak great circle.
func (g *RoadGraph) AddWeightedEdge(from, to int32, weight float64) error {
	if !g.has(from) || !g.has(to) {
		return ErrVertexNotFound
	}
	if math.IsNaN(weight) || weight < g.distance(from, to) {
		return ErrInadmissibleWeight
	}
	return g.addEdge(from, to, weight)
}

func (g *RoadGraph) addEdge(from, to int32, weight float64) error {
	g.out[from] = append(g.out[from], datastructure.NewWeightedEdge(from, to, weight))
	g.edges++
	return nil
}

func (g *RoadGraph) distance(u, v int32) float64 {
	a, b := g.coords[u], g.coords[v]
	return geo.GreatCircleDistance(a.Lat, a.Lon, b.Lat, b.Lon)
}

func (g *RoadGraph) Neighbors(v int32) []datastructure.WeightedEdge[int32] {
	if !g.has(v) {
		return nil
	}
	return g.out[v]
}

func (g *RoadGraph) EstimatedDistanceToGoal(v, goal int32) float64 {
	if !g.has(v) || !g.has(goal) {
		return 0
	}
	return g.distance(v, goal)
}

func (g *RoadGraph) Coordinate(v int32) (datastructure.Coordinate, error) {
	if !g.has(v) {
		return datastructure.Coordinate{}, ErrVertexNotFound
	}
	return g.coords[v], nil
}

func (g *RoadGraph) NumVertices() int {
	return len(g.coords)
}

func (g *RoadGraph) NumEdges() int {
	return g.edges
}

// NearestVertex snap lat, lon ke vertex terdekat pakai rtree
func (g *RoadGraph) NearestVertex(lat, lon float64) (int32, error) {
	if len(g.coords) == 0 {
		return -1, ErrEmptyGraph
	}
	nearest := g.rtree.NearestNeighbor(rtreego.Point{lat, lon})
	if nearest == nil {
		return -1, ErrEmptyGraph
	}
	return nearest.(*vertexRect).id, nil
}

// RenderPath encode path hasil A* jadi google polyline
func (g *RoadGraph) RenderPath(path []int32) (string, []datastructure.Coordinate, error) {
	coords := make([]datastructure.Coordinate, 0, len(path))
	for _, v := range path {
		c, err := g.Coordinate(v)
		if err != nil {
			return "", nil, err
		}
		coords = append(coords, c)
	}
	return datastructure.RenderPath(coords), coords, nil
}
