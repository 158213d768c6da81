package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"lintang/astarx/pkg/concurrent"
	"lintang/astarx/pkg/datastructure"
	"lintang/astarx/pkg/engine/routingalgorithm"
	"lintang/astarx/pkg/graph"
	"lintang/astarx/pkg/roadnetwork"
	"lintang/astarx/pkg/server"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("lintang/astarx/pkg/server/rest/service")

type GraphInfo struct {
	Name        string
	NumVertices int
	NumEdges    int
}

// Query hasil satu shortest path query di graph bernama / inline
type Query struct {
	ID                string
	Source            string
	Target            string
	Outcome           routingalgorithm.SolverOutcome
	Path              []string
	Weight            float64
	NumStatesExplored int
	ExplorationTime   time.Duration
}

// GeoQuery hasil shortest path di road network, Distance dalam meter
type GeoQuery struct {
	ID                string
	Source            datastructure.Coordinate
	Target            datastructure.Coordinate
	Outcome           routingalgorithm.SolverOutcome
	Polyline          string
	Route             []datastructure.Coordinate
	Distance          float64
	NumStatesExplored int
	ExplorationTime   time.Duration
}

type SearchService struct {
	mu             sync.RWMutex
	graphs         map[string]*graph.AdjacencyList[string]
	road           *roadnetwork.RoadGraph
	logger         zerolog.Logger
	defaultTimeout time.Duration
	maxTimeout     time.Duration
	numWorkers     int
}

func NewSearchService(logger zerolog.Logger, defaultTimeout, maxTimeout time.Duration, numWorkers int) *SearchService {
	if maxTimeout < defaultTimeout {
		maxTimeout = defaultTimeout
	}
	return &SearchService{
		graphs:         make(map[string]*graph.AdjacencyList[string]),
		logger:         logger,
		defaultTimeout: defaultTimeout,
		maxTimeout:     maxTimeout,
		numWorkers:     numWorkers,
	}
}

// RegisterGraph graph tidak boleh diubah lagi setelah di register, dibaca bersamaan oleh banyak query.
func (uc *SearchService) RegisterGraph(name string, g *graph.AdjacencyList[string]) error {
	if name == "" || g == nil {
		return server.WrapErrorf(nil, server.ErrBadParamInput, "graph name and graph must not be empty")
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, ok := uc.graphs[name]; ok {
		return server.WrapErrorf(nil, server.ErrConflict, "graph %s already registered", name)
	}
	uc.graphs[name] = g
	uc.logger.Info().Str("graph", name).Int("vertices", g.NumVertices()).Int("edges", g.NumEdges()).Msg("graph registered")
	return nil
}

func (uc *SearchService) SetRoadNetwork(g *roadnetwork.RoadGraph) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.road = g
}

// Graphs urut berdasarkan nama
func (uc *SearchService) Graphs() []GraphInfo {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	infos := make([]GraphInfo, 0, len(uc.graphs))
	for name, g := range uc.graphs {
		infos = append(infos, GraphInfo{Name: name, NumVertices: g.NumVertices(), NumEdges: g.NumEdges()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

func (uc *SearchService) getGraph(name string) (*graph.AdjacencyList[string], error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	g, ok := uc.graphs[name]
	if !ok {
		return nil, server.WrapErrorf(nil, server.ErrNotFound, "graph %s not found", name)
	}
	return g, nil
}

// searchTimeout 0 = default, lebih dari max di potong, deadline ctx juga membatasi.
func (uc *SearchService) searchTimeout(ctx context.Context, timeout time.Duration) (time.Duration, error) {
	if timeout < 0 {
		return 0, server.WrapErrorf(nil, server.ErrBadParamInput, "timeout must not be negative")
	}
	if timeout == 0 {
		timeout = uc.defaultTimeout
	}
	if timeout > uc.maxTimeout {
		timeout = uc.maxTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = max(remaining, 0)
		}
	}
	return timeout, nil
}

func (uc *SearchService) ShortestPath(ctx context.Context, graphName, start, goal string, timeout time.Duration) (Query, error) {
	ctx, span := tracer.Start(ctx, "service.SearchService.ShortestPath",
		trace.WithAttributes(
			attribute.String("graph", graphName),
			attribute.String("start", start),
			attribute.String("goal", goal),
		))
	defer span.End()

	g, err := uc.getGraph(graphName)
	if err != nil {
		return Query{}, err
	}
	if err := checkVertices(g, start, goal); err != nil {
		return Query{}, err
	}
	timeout, err = uc.searchTimeout(ctx, timeout)
	if err != nil {
		return Query{}, err
	}

	q := uc.solve(g, start, goal, timeout)
	uc.finish(span, graphName, q)
	return q, nil
}

// ShortestPathInline graph dibangun dari edges di request, tidak disimpan.
func (uc *SearchService) ShortestPathInline(ctx context.Context, edges []datastructure.WeightedEdge[string], start, goal string,
	timeout time.Duration) (Query, error) {
	ctx, span := tracer.Start(ctx, "service.SearchService.ShortestPathInline",
		trace.WithAttributes(attribute.Int("edges", len(edges))))
	defer span.End()

	if len(edges) == 0 {
		return Query{}, server.WrapErrorf(nil, server.ErrBadParamInput, "edges must not be empty")
	}
	g := graph.NewAdjacencyList[string]()
	for _, e := range edges {
		if err := g.AddEdge(e.From, e.To, e.Weight); err != nil {
			return Query{}, server.WrapErrorf(err, server.ErrBadParamInput, "edge %s -> %s: %v", e.From, e.To, err)
		}
	}
	if err := checkVertices(g, start, goal); err != nil {
		return Query{}, err
	}
	timeout, err := uc.searchTimeout(ctx, timeout)
	if err != nil {
		return Query{}, err
	}

	q := uc.solve(g, start, goal, timeout)
	uc.finish(span, "inline", q)
	return q, nil
}

type pairJob struct {
	index  int
	source string
	target string
}

type pairResult struct {
	index int
	query Query
}

// ManyToMany shortest path setiap source ke setiap target, dikerjakan worker pool.
// urutan hasil: source dulu lalu target, sama dengan urutan di request.
func (uc *SearchService) ManyToMany(ctx context.Context, graphName string, sources, targets []string, timeout time.Duration) ([]Query, error) {
	ctx, span := tracer.Start(ctx, "service.SearchService.ManyToMany",
		trace.WithAttributes(
			attribute.String("graph", graphName),
			attribute.Int("sources", len(sources)),
			attribute.Int("targets", len(targets)),
		))
	defer span.End()

	if len(sources) == 0 || len(targets) == 0 {
		return nil, server.WrapErrorf(nil, server.ErrBadParamInput, "sources and targets must not be empty")
	}
	g, err := uc.getGraph(graphName)
	if err != nil {
		return nil, err
	}
	if err := checkVertices(g, append(append([]string{}, sources...), targets...)...); err != nil {
		return nil, err
	}
	timeout, err = uc.searchTimeout(ctx, timeout)
	if err != nil {
		return nil, err
	}

	numJobs := len(sources) * len(targets)
	wp := concurrent.NewWorkerPool[pairJob, pairResult](min(uc.numWorkers, numJobs), numJobs)
	wp.Start(func(job pairJob) pairResult {
		return pairResult{index: job.index, query: uc.solve(g, job.source, job.target, timeout)}
	})
	for i, s := range sources {
		for j, t := range targets {
			wp.AddJob(pairJob{index: i*len(targets) + j, source: s, target: t})
		}
	}
	wp.Close()
	wp.Wait()

	queries := make([]Query, numJobs)
	solved := 0
	for res := range wp.CollectResults() {
		queries[res.index] = res.query
		if res.query.Outcome == routingalgorithm.Solved {
			solved++
		}
	}
	span.SetAttributes(attribute.Int("solved", solved))
	uc.logger.Info().Str("graph", graphName).Int("pairs", numJobs).Int("solved", solved).Msg("many to many query finished")
	return queries, nil
}

// ShortestPathGeo snap source & destination ke vertex road network terdekat lalu A* dengan heuristic great circle.
func (uc *SearchService) ShortestPathGeo(ctx context.Context, srcLat, srcLon, dstLat, dstLon float64, timeout time.Duration) (GeoQuery, error) {
	ctx, span := tracer.Start(ctx, "service.SearchService.ShortestPathGeo",
		trace.WithAttributes(
			attribute.Float64("src_lat", srcLat), attribute.Float64("src_lon", srcLon),
			attribute.Float64("dst_lat", dstLat), attribute.Float64("dst_lon", dstLon),
		))
	defer span.End()

	uc.mu.RLock()
	road := uc.road
	uc.mu.RUnlock()
	if road == nil {
		return GeoQuery{}, server.WrapErrorf(nil, server.ErrNotFound, "no road network loaded, start the server with an openstreetmap pbf file")
	}

	from, err := road.NearestVertex(srcLat, srcLon)
	if err != nil {
		return GeoQuery{}, server.WrapErrorf(err, server.ErrNotFound, "sorry!! the location you entered is not covered on my map :(")
	}
	to, err := road.NearestVertex(dstLat, dstLon)
	if err != nil {
		return GeoQuery{}, server.WrapErrorf(err, server.ErrNotFound, "sorry!! the location you entered is not covered on my map :(")
	}
	timeout, err = uc.searchTimeout(ctx, timeout)
	if err != nil {
		return GeoQuery{}, err
	}

	res := routingalgorithm.NewAStar[int32](road, routingalgorithm.WithLogger(uc.logger)).ShortestPath(from, to, timeout)
	q := GeoQuery{
		ID:                uuid.New().String(),
		Outcome:           res.Outcome,
		Distance:          res.Weight,
		NumStatesExplored: res.NumStatesExplored,
		ExplorationTime:   res.ExplorationTime,
	}
	q.Source, _ = road.Coordinate(from)
	q.Target, _ = road.Coordinate(to)
	if res.Outcome == routingalgorithm.Solved {
		q.Polyline, q.Route, err = road.RenderPath(res.Path)
		if err != nil {
			return GeoQuery{}, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
		}
	}

	span.SetAttributes(
		attribute.String("query_id", q.ID),
		attribute.String("outcome", q.Outcome.String()),
		attribute.Int("states_explored", q.NumStatesExplored),
	)
	uc.logger.Info().
		Str("query_id", q.ID).
		Str("outcome", q.Outcome.String()).
		Int("states_explored", q.NumStatesExplored).
		Float64("distance_m", q.Distance).
		Dur("elapsed", q.ExplorationTime).
		Msg("road network query finished")
	return q, nil
}

func (uc *SearchService) solve(g *graph.AdjacencyList[string], start, goal string, timeout time.Duration) Query {
	res := routingalgorithm.NewAStar[string](g, routingalgorithm.WithLogger(uc.logger)).ShortestPath(start, goal, timeout)
	return Query{
		ID:                uuid.New().String(),
		Source:            start,
		Target:            goal,
		Outcome:           res.Outcome,
		Path:              res.Path,
		Weight:            res.Weight,
		NumStatesExplored: res.NumStatesExplored,
		ExplorationTime:   res.ExplorationTime,
	}
}

func (uc *SearchService) finish(span trace.Span, graphName string, q Query) {
	span.SetAttributes(
		attribute.String("query_id", q.ID),
		attribute.String("outcome", q.Outcome.String()),
		attribute.Int("states_explored", q.NumStatesExplored),
	)
	uc.logger.Info().
		Str("query_id", q.ID).
		Str("graph", graphName).
		Str("outcome", q.Outcome.String()).
		Int("states_explored", q.NumStatesExplored).
		Float64("weight", q.Weight).
		Dur("elapsed", q.ExplorationTime).
		Msg("shortest path query finished")
}

var errVertexNotFound = errors.New("vertex not found")

func checkVertices(g *graph.AdjacencyList[string], vertices ...string) error {
	for _, v := range vertices {
		if !g.HasVertex(v) {
			return server.WrapErrorf(errVertexNotFound, server.ErrNotFound, "vertex %s not found", v)
		}
	}
	return nil
}
