package osmparser

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"

	"lintang/astarx/pkg/geo"
	"lintang/astarx/pkg/roadnetwork"

	"github.com/k0kubun/go-ansi"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
)

type OSMParser struct {
	showProgress bool
	procs        int
	logger       zerolog.Logger
}

type Option func(*OSMParser)

func WithProgress(show bool) Option {
	return func(p *OSMParser) { p.showProgress = show }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(p *OSMParser) { p.logger = logger }
}

func NewOSMParser(opts ...Option) *OSMParser {
	p := &OSMParser{
		procs:  3,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OSMParser) ParseFile(ctx context.Context, path string) (*roadnetwork.RoadGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open osm file: %w", err)
	}
	defer f.Close()
	return p.Parse(ctx, f)
}

// Parse dua kali scan: pertama ambil way yang bisa dilewati mobil, kedua ambil koordinat node dari way tsb.
func (p *OSMParser) Parse(ctx context.Context, r io.ReadSeeker) (*roadnetwork.RoadGraph, error) {
	ways := []*osm.Way{}
	wayNodes := make(map[osm.NodeID]struct{})

	scanner := osmpbf.New(ctx, r, p.procs)
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok || !isOsmWayUsedByCars(way.TagMap()) {
			continue
		}
		ways = append(ways, way)
		for _, n := range way.Nodes {
			wayNodes[n.ID] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("scan osm ways: %w", err)
	}
	scanner.Close()
	p.logger.Info().Int("ways", len(ways)).Msg("road ways loaded")

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind osm file: %w", err)
	}

	nodes := make(map[osm.NodeID]*osm.Node, len(wayNodes))
	scanner = osmpbf.New(ctx, r, p.procs)
	scanner.SkipWays = true
	scanner.SkipRelations = true
	defer scanner.Close()
	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, used := wayNodes[node.ID]; used {
			nodes[node.ID] = node
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan osm nodes: %w", err)
	}
	p.logger.Info().Int("nodes", len(nodes)).Msg("road nodes loaded")

	return p.BuildRoadGraph(ways, nodes), nil
}

// BuildRoadGraph vertex hanya node persimpangan (dipakai >= 2 way) dan ujung way.
// weight edge = panjang polyline way di antara dua vertex.
func (p *OSMParser) BuildRoadGraph(ways []*osm.Way, nodes map[osm.NodeID]*osm.Node) *roadnetwork.RoadGraph {
	usedInRoad := make(map[osm.NodeID]int)
	for _, way := range ways {
		for i, n := range way.Nodes {
			if _, ok := nodes[n.ID]; !ok {
				continue
			}
			usedInRoad[n.ID]++
			if i == 0 || i == len(way.Nodes)-1 {
				usedInRoad[n.ID]++
			}
		}
	}

	bar := progressbar.NewOptions(len(ways),
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetVisibility(p.showProgress),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription("[cyan][1/1][reset] building road network from openstreetmap way..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	g := roadnetwork.NewRoadGraph()
	vertexOf := make(map[osm.NodeID]int32)
	getVertex := func(n *osm.Node) int32 {
		if id, ok := vertexOf[n.ID]; ok {
			return id
		}
		id := g.AddVertex(n.Lat, n.Lon)
		vertexOf[n.ID] = id
		return id
	}

	for _, way := range ways {
		forward, backward := wayDirection(way.TagMap())

		var from *osm.Node
		length := 0.0
		var prev *osm.Node
		for _, wn := range way.Nodes {
			curr, ok := nodes[wn.ID]
			if !ok {
				// node di luar extract, potong way di sini
				from, prev, length = nil, nil, 0
				continue
			}
			if prev != nil {
				length += geo.GreatCircleDistance(prev.Lat, prev.Lon, curr.Lat, curr.Lon)
			}
			prev = curr

			// setelah potongan, node pertama yang ada jadi awal segment baru
			if from != nil && usedInRoad[curr.ID] < 2 {
				continue
			}
			if from != nil && from.ID != curr.ID {
				u, v := getVertex(from), getVertex(curr)
				direct := geo.GreatCircleDistance(from.Lat, from.Lon, curr.Lat, curr.Lon)
				weight := math.Max(length, direct)
				if forward {
					_ = g.AddWeightedEdge(u, v, weight)
				}
				if backward {
					_ = g.AddWeightedEdge(v, u, weight)
				}
			}
			from = curr
			length = 0
		}
		bar.Add(1)
	}
	if p.showProgress {
		fmt.Println("")
	}

	p.logger.Info().Int("vertices", g.NumVertices()).Int("edges", g.NumEdges()).Msg("road network ready")
	return g
}

// wayDirection arah yang bisa dilewati (forward = urutan node way)
func wayDirection(tagMap map[string]string) (forward, backward bool) {
	oneway := tagMap["oneway"]
	switch oneway {
	case "yes", "true", "1":
		return true, false
	case "-1", "reverse":
		return false, true
	case "no", "false", "0":
		return true, true
	}
	if junction := tagMap["junction"]; junction == "roundabout" || junction == "circular" {
		return true, false
	}
	if highway := tagMap["highway"]; highway == "motorway" {
		return true, false
	}
	return true, true
}

// https://github.com/RoutingKit/RoutingKit/blob/master/src/osm_profile.cpp  [is_osm_way_used_by_cars()]
func isOsmWayUsedByCars(tagMap map[string]string) bool {
	if _, ok := tagMap["junction"]; ok {
		return true
	}
	if route, ok := tagMap["route"]; ok && route == "ferry" {
		return true
	}
	if ferry, ok := tagMap["ferry"]; ok && ferry == "yes" {
		return true
	}

	highway, ok := tagMap["highway"]
	if !ok {
		return false
	}
	if motorcar, ok := tagMap["motorcar"]; ok && motorcar == "no" {
		return false
	}
	if motorVehicle, ok := tagMap["motor_vehicle"]; ok && motorVehicle == "no" {
		return false
	}
	if access, ok := tagMap["access"]; ok {
		if !(access == "yes" || access == "permissive" || access == "designated" || access == "delivery" || access == "destination") {
			return false
		}
	}

	switch highway {
	case "motorway", "trunk", "primary", "secondary", "tertiary", "unclassified", "residential",
		"living_street", "service", "motorway_link", "trunk_link", "primary_link", "secondary_link", "tertiary_link":
		return true
	case "bicycle_road":
		return tagMap["motorcar"] == "yes"
	case "construction", "path", "footway", "cycleway", "bridleway", "pedestrian", "bus_guideway",
		"raceway", "escape", "steps", "proposed", "conveying":
		return false
	}

	if oneway, ok := tagMap["oneway"]; ok && (oneway == "reversible" || oneway == "alternating") {
		return false
	}
	_, ok = tagMap["maxspeed"]
	return ok
}
