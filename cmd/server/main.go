package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"lintang/astarx/pkg/config"
	"lintang/astarx/pkg/graphio"
	"lintang/astarx/pkg/osmparser"
	"lintang/astarx/pkg/server/rest"
	"lintang/astarx/pkg/server/rest/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	configFile = flag.String("config", "", "config file (yaml/json/toml), optional")
	listenAddr = flag.String("listenaddr", "", "server listen address, default :<server.port>")
	mapFile    = flag.String("f", "", "openstreeetmap pbf file buat road network graphnya")
	edgeLists  = flag.String("graphs", "", "comma separated edge list csv files (boleh .zst)")
)

func main() {
	flag.Parse()

	cfg := config.NewConfig()
	if *configFile != "" {
		if err := cfg.LoadFromFile(*configFile); err != nil {
			l := cfg.CreateLogger("astarx")
			l.Fatal().Err(err).Str("file", *configFile).Msg("can't read config file")
		}
	}
	if *mapFile != "" {
		cfg.Set("graph.osm_file", *mapFile)
	}
	if *edgeLists != "" {
		cfg.Set("graph.edge_lists", strings.Split(*edgeLists, ","))
	}
	logger := cfg.CreateLogger("astarx")

	svc := service.NewSearchService(logger, cfg.DefaultTimeout(), cfg.MaxTimeout(), cfg.NumWorkers())
	if err := loadGraphs(cfg, svc, logger); err != nil {
		logger.Fatal().Err(err).Msg("can't load graphs")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	rest.SearchRouter(r, svc, m)

	addr := *listenAddr
	if addr == "" {
		addr = ":" + cfg.Port()
	}
	srv := &http.Server{Addr: addr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", addr).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}

func loadGraphs(cfg *config.Config, svc *service.SearchService, logger zerolog.Logger) error {
	for _, path := range cfg.EdgeLists() {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		start := time.Now()
		g, err := graphio.LoadEdgeListFile(path)
		if err != nil {
			return err
		}
		if err := svc.RegisterGraph(graphName(path), g); err != nil {
			return err
		}
		logger.Info().Str("file", path).Dur("took", time.Since(start)).Msg("edge list loaded")
	}

	if osmFile := cfg.OSMFile(); osmFile != "" {
		parser := osmparser.NewOSMParser(osmparser.WithProgress(cfg.ShowProgress()), osmparser.WithLogger(logger))
		road, err := parser.ParseFile(context.Background(), osmFile)
		if err != nil {
			return err
		}
		svc.SetRoadNetwork(road)
	}
	return nil
}

// graphName nama file tanpa .zst dan .csv, misal data/solo.csv.zst -> solo
func graphName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".zst")
	return strings.TrimSuffix(name, filepath.Ext(name))
}
