package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lintang/astarx/pkg/graph"
	"lintang/astarx/pkg/roadnetwork"
	"lintang/astarx/pkg/server/rest/service"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *chi.Mux
	m      *metrics
}

func newTestServer(t *testing.T) *testServer {
	g := graph.NewAdjacencyList[string]()
	require.NoError(t, g.AddEdge("A", "B", 1))
	require.NoError(t, g.AddEdge("A", "C", 4))
	require.NoError(t, g.AddEdge("B", "C", 2))
	require.NoError(t, g.AddEdge("B", "D", 5))
	require.NoError(t, g.AddEdge("C", "D", 1))
	g.AddVertex("Z")

	svc := service.NewSearchService(zerolog.Nop(), time.Second, 5*time.Second, 2)
	require.NoError(t, svc.RegisterGraph("four", g))

	road := roadnetwork.NewRoadGraph()
	a := road.AddVertex(-7.5600, 110.8200)
	b := road.AddVertex(-7.5610, 110.8210)
	require.NoError(t, road.AddEdge(a, b))
	svc.SetRoadNetwork(road)

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := chi.NewRouter()
	r.Use(PromeHttpMiddleware(m))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	SearchRouter(r, svc, m)
	return &testServer{router: r, m: m}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestListGraphs(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/search/graphs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ListGraphsResponse](t, rec)
	assert.Equal(t, []GraphInfoResponse{{Name: "four", NumVertices: 5, NumEdges: 5}}, resp.Graphs)
}

func TestShortestPathHandler(t *testing.T) {
	t.Run("solved", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(t, http.MethodPost, "/api/search/graphs/four/shortest-path", `{"start":"A","goal":"D"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[QueryResponse](t, rec)
		assert.Equal(t, "SOLVED", resp.Outcome)
		assert.Equal(t, []string{"A", "B", "C", "D"}, resp.Path)
		assert.Equal(t, 4.0, resp.Weight)
		assert.Equal(t, 3, resp.StatesExplored)
		assert.NotEmpty(t, resp.QueryID)

		assert.Equal(t, 1.0, testutil.ToFloat64(s.m.SPQueryCount.WithLabelValues("graph", "SOLVED")))
	})

	t.Run("unsolvable is still 200", func(t *testing.T) {
		rec := newTestServer(t).do(t, http.MethodPost, "/api/search/graphs/four/shortest-path", `{"start":"A","goal":"Z"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[QueryResponse](t, rec)
		assert.Equal(t, "UNSOLVABLE", resp.Outcome)
		assert.Empty(t, resp.Path)
	})

	t.Run("unknown graph", func(t *testing.T) {
		rec := newTestServer(t).do(t, http.MethodPost, "/api/search/graphs/nope/shortest-path", `{"start":"A","goal":"D"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		resp := decode[ErrResponse](t, rec)
		assert.Equal(t, "Resource not found.", resp.StatusText)
	})

	t.Run("validation error", func(t *testing.T) {
		rec := newTestServer(t).do(t, http.MethodPost, "/api/search/graphs/four/shortest-path", `{"start":"A","timeout_ms":-1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decode[ErrResponse](t, rec)
		require.Len(t, resp.ErrValidation, 2)
		assert.Contains(t, resp.ErrValidation[0], "Goal is a required field")
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := newTestServer(t).do(t, http.MethodPost, "/api/search/graphs/four/shortest-path", `{"start":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestShortestPathInlineHandler(t *testing.T) {
	s := newTestServer(t)
	body := `{"edges":[{"from":"s","to":"m","weight":2},{"from":"m","to":"t","weight":2},{"from":"s","to":"t","weight":5}],
		"start":"s","goal":"t","timeout_ms":100}`
	rec := s.do(t, http.MethodPost, "/api/search/shortest-path", body)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[QueryResponse](t, rec)
	assert.Equal(t, []string{"s", "m", "t"}, resp.Path)
	assert.Equal(t, 4.0, resp.Weight)

	rec = s.do(t, http.MethodPost, "/api/search/shortest-path", `{"edges":[],"start":"s","goal":"t"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/search/shortest-path", `{"edges":[{"from":"s","to":"t","weight":-2}],"start":"s","goal":"t"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestManyToManyHandler(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/search/graphs/four/many-to-many", `{"sources":["A","B"],"targets":["D"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ManyToManyResponse](t, rec)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "A", resp.Results[0].Source)
	assert.Equal(t, 4.0, resp.Results[0].Weight)
	assert.Equal(t, "B", resp.Results[1].Source)
	assert.Equal(t, 3.0, resp.Results[1].Weight)

	rec = s.do(t, http.MethodPost, "/api/search/graphs/four/many-to-many", `{"sources":["A"],"targets":["nowhere"]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShortestPathGeoHandler(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/navigations/shortest-path",
		`{"src_lat":-7.5600,"src_lon":110.8200,"dst_lat":-7.5610,"dst_lon":110.8210}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[GeoQueryResponse](t, rec)
	assert.Equal(t, "SOLVED", resp.Outcome)
	assert.Len(t, resp.Route, 2)
	assert.NotEmpty(t, resp.Path)

	rec = s.do(t, http.MethodPost, "/api/navigations/shortest-path",
		`{"src_lat":-97.5,"src_lon":110.8200,"dst_lat":-7.5610,"dst_lon":110.8210}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/search/graphs/four/shortest-path", `{"start":"A","goal":"D"}`)

	rec := s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "astarx_shortestpath_query_count"))
	assert.True(t, strings.Contains(body, `path="/api/search/graphs/{name}/shortest-path"`))
}
