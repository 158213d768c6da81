package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"lintang/astarx/pkg/config"
	"lintang/astarx/pkg/engine/routingalgorithm"
	"lintang/astarx/pkg/graphio"
	"lintang/astarx/pkg/osmparser"
)

var (
	edgeList = flag.String("graph", "", "edge list csv file (boleh .zst)")
	start    = flag.String("start", "", "start vertex")
	goal     = flag.String("goal", "", "goal vertex")
	mapFile  = flag.String("f", "", "openstreetmap pbf file, dipakai bersama -src & -dst")
	src      = flag.String("src", "", "source lat,lon")
	dst      = flag.String("dst", "", "destination lat,lon")
	timeout  = flag.Float64("timeout", 5, "timeout dalam detik")
	verbose  = flag.Bool("v", false, "debug log")
)

func main() {
	flag.Parse()

	cfg := config.NewConfig()
	if *verbose {
		cfg.Set("logging.level", "debug")
	}
	logger := cfg.CreateLogger("astarx-solve")

	switch {
	case *edgeList != "":
		g, err := graphio.LoadEdgeListFile(*edgeList)
		if err != nil {
			logger.Fatal().Err(err).Msg("can't load edge list")
		}
		res := routingalgorithm.NewAStar[string](g, routingalgorithm.WithLogger(logger)).
			ShortestPath(*start, *goal, routingalgorithm.TimeoutFromSeconds(*timeout))
		fmt.Printf("outcome: %s\n", res.Outcome)
		fmt.Printf("path: %s\n", strings.Join(res.Path, " -> "))
		fmt.Printf("weight: %g\n", res.Weight)
		fmt.Printf("states explored: %d\n", res.NumStatesExplored)
		fmt.Printf("exploration time: %s\n", res.ExplorationTime)

	case *mapFile != "":
		var srcLat, srcLon, dstLat, dstLon float64
		if _, err := fmt.Sscanf(*src, "%f,%f", &srcLat, &srcLon); err != nil {
			logger.Fatal().Err(err).Str("src", *src).Msg("invalid -src, want lat,lon")
		}
		if _, err := fmt.Sscanf(*dst, "%f,%f", &dstLat, &dstLon); err != nil {
			logger.Fatal().Err(err).Str("dst", *dst).Msg("invalid -dst, want lat,lon")
		}

		parser := osmparser.NewOSMParser(osmparser.WithProgress(true), osmparser.WithLogger(logger))
		road, err := parser.ParseFile(context.Background(), *mapFile)
		if err != nil {
			logger.Fatal().Err(err).Msg("can't parse openstreetmap file")
		}
		from, err := road.NearestVertex(srcLat, srcLon)
		if err != nil {
			logger.Fatal().Err(err).Msg("can't snap source")
		}
		to, err := road.NearestVertex(dstLat, dstLon)
		if err != nil {
			logger.Fatal().Err(err).Msg("can't snap destination")
		}

		res := routingalgorithm.NewAStar[int32](road, routingalgorithm.WithLogger(logger)).
			ShortestPath(from, to, routingalgorithm.TimeoutFromSeconds(*timeout))
		fmt.Printf("outcome: %s\n", res.Outcome)
		if res.Outcome == routingalgorithm.Solved {
			polyline, _, err := road.RenderPath(res.Path)
			if err != nil {
				logger.Fatal().Err(err).Msg("can't render path")
			}
			fmt.Printf("polyline: %s\n", polyline)
			fmt.Printf("distance: %.3f km\n", res.Weight/1000)
		}
		fmt.Printf("states explored: %d\n", res.NumStatesExplored)
		fmt.Printf("exploration time: %s\n", res.ExplorationTime)

	default:
		flag.Usage()
		os.Exit(2)
	}
}
