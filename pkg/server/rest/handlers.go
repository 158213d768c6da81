package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"lintang/astarx/pkg/datastructure"
	"lintang/astarx/pkg/server"
	"lintang/astarx/pkg/server/rest/service"
	"lintang/astarx/pkg/util"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type SearchService interface {
	Graphs() []service.GraphInfo
	ShortestPath(ctx context.Context, graphName, start, goal string, timeout time.Duration) (service.Query, error)
	ShortestPathInline(ctx context.Context, edges []datastructure.WeightedEdge[string], start, goal string,
		timeout time.Duration) (service.Query, error)
	ManyToMany(ctx context.Context, graphName string, sources, targets []string, timeout time.Duration) ([]service.Query, error)
	ShortestPathGeo(ctx context.Context, srcLat, srcLon, dstLat, dstLon float64, timeout time.Duration) (service.GeoQuery, error)
}

type SearchHandler struct {
	svc          SearchService
	promeMetrics *metrics
	validate     *validator.Validate
	trans        ut.Translator
}

func SearchRouter(r *chi.Mux, svc SearchService, m *metrics) {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	validate := validator.New()
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	handler := &SearchHandler{svc, m, validate, trans}

	r.Group(func(r chi.Router) {
		r.Route("/api/search", func(r chi.Router) {
			r.Get("/graphs", handler.listGraphs)
			r.Post("/shortest-path", handler.shortestPathInline)
			r.Post("/graphs/{name}/shortest-path", handler.shortestPath)
			r.Post("/graphs/{name}/many-to-many", handler.manyToMany)
		})
		r.Route("/api/navigations", func(r chi.Router) {
			r.Post("/shortest-path", handler.shortestPathGeo)
		})
	})
}

// validateRequest false kalau tidak valid, response 400 sudah di render
func (h *SearchHandler) validateRequest(w http.ResponseWriter, r *http.Request, data interface{}) bool {
	if err := h.validate.Struct(data); err != nil {
		vv := translateError(err, h.trans)
		render.Render(w, r, ErrValidation(err, vv))
		return false
	}
	return true
}

func timeoutFromMs(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

type GraphInfoResponse struct {
	Name        string `json:"name"`
	NumVertices int    `json:"num_vertices"`
	NumEdges    int    `json:"num_edges"`
}

type ListGraphsResponse struct {
	Graphs []GraphInfoResponse `json:"graphs"`
}

func (h *SearchHandler) listGraphs(w http.ResponseWriter, r *http.Request) {
	infos := h.svc.Graphs()
	resp := &ListGraphsResponse{Graphs: make([]GraphInfoResponse, 0, len(infos))}
	for _, info := range infos {
		resp.Graphs = append(resp.Graphs, GraphInfoResponse{Name: info.Name, NumVertices: info.NumVertices, NumEdges: info.NumEdges})
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// QueryResponse satu hasil A*. path kosong kalau outcome bukan SOLVED.
type QueryResponse struct {
	QueryID           string   `json:"query_id"`
	Source            string   `json:"source"`
	Target            string   `json:"target"`
	Outcome           string   `json:"outcome"`
	Path              []string `json:"path"`
	Weight            float64  `json:"weight"`
	StatesExplored    int      `json:"states_explored"`
	ExplorationTimeMs float64  `json:"exploration_time_ms"`
}

func NewQueryResponse(q service.Query) *QueryResponse {
	path := q.Path
	if path == nil {
		path = []string{}
	}
	return &QueryResponse{
		QueryID:           q.ID,
		Source:            q.Source,
		Target:            q.Target,
		Outcome:           q.Outcome.String(),
		Path:              path,
		Weight:            util.RoundFloat(q.Weight, 6),
		StatesExplored:    q.NumStatesExplored,
		ExplorationTimeMs: durationMs(q.ExplorationTime),
	}
}

func durationMs(d time.Duration) float64 {
	return util.RoundFloat(float64(d)/float64(time.Millisecond), 3)
}

type EdgeRequest struct {
	From   string  `json:"from" validate:"required"`
	To     string  `json:"to" validate:"required"`
	Weight float64 `json:"weight" validate:"gte=0"`
}

type ShortestPathInlineRequest struct {
	Edges     []EdgeRequest `json:"edges" validate:"required,min=1,dive"`
	Start     string        `json:"start" validate:"required"`
	Goal      string        `json:"goal" validate:"required"`
	TimeoutMs int64         `json:"timeout_ms" validate:"gte=0"`
}

func (s *ShortestPathInlineRequest) Bind(r *http.Request) error {
	if len(s.Edges) == 0 {
		return errors.New("invalid request: edges is empty")
	}
	return nil
}

func (h *SearchHandler) shortestPathInline(w http.ResponseWriter, r *http.Request) {
	data := &ShortestPathInlineRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateRequest(w, r, *data) {
		return
	}

	edges := make([]datastructure.WeightedEdge[string], 0, len(data.Edges))
	for _, e := range data.Edges {
		edges = append(edges, datastructure.NewWeightedEdge(e.From, e.To, e.Weight))
	}
	q, err := h.svc.ShortestPathInline(r.Context(), edges, data.Start, data.Goal, timeoutFromMs(data.TimeoutMs))
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	h.promeMetrics.observeQuery("inline", q.Outcome.String(), q.NumStatesExplored)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewQueryResponse(q))
}

type ShortestPathRequest struct {
	Start     string `json:"start" validate:"required"`
	Goal      string `json:"goal" validate:"required"`
	TimeoutMs int64  `json:"timeout_ms" validate:"gte=0"`
}

func (s *ShortestPathRequest) Bind(r *http.Request) error {
	return nil
}

func (h *SearchHandler) shortestPath(w http.ResponseWriter, r *http.Request) {
	data := &ShortestPathRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateRequest(w, r, *data) {
		return
	}

	q, err := h.svc.ShortestPath(r.Context(), chi.URLParam(r, "name"), data.Start, data.Goal, timeoutFromMs(data.TimeoutMs))
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	h.promeMetrics.observeQuery("graph", q.Outcome.String(), q.NumStatesExplored)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewQueryResponse(q))
}

type ManyToManyRequest struct {
	Sources   []string `json:"sources" validate:"required,min=1,dive,required"`
	Targets   []string `json:"targets" validate:"required,min=1,dive,required"`
	TimeoutMs int64    `json:"timeout_ms" validate:"gte=0"`
}

func (s *ManyToManyRequest) Bind(r *http.Request) error {
	if len(s.Sources) == 0 || len(s.Targets) == 0 {
		return errors.New("invalid request: sources and targets must not be empty")
	}
	return nil
}

type ManyToManyResponse struct {
	Results []*QueryResponse `json:"results"`
}

func (h *SearchHandler) manyToMany(w http.ResponseWriter, r *http.Request) {
	data := &ManyToManyRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateRequest(w, r, *data) {
		return
	}

	queries, err := h.svc.ManyToMany(r.Context(), chi.URLParam(r, "name"), data.Sources, data.Targets, timeoutFromMs(data.TimeoutMs))
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	resp := &ManyToManyResponse{Results: make([]*QueryResponse, 0, len(queries))}
	for _, q := range queries {
		h.promeMetrics.observeQuery("many_to_many", q.Outcome.String(), q.NumStatesExplored)
		resp.Results = append(resp.Results, NewQueryResponse(q))
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

type GeoShortestPathRequest struct {
	SrcLat    float64 `json:"src_lat" validate:"required,lt=90,gt=-90"`
	SrcLon    float64 `json:"src_lon" validate:"required,lt=180,gt=-180"`
	DstLat    float64 `json:"dst_lat" validate:"required,lt=90,gt=-90"`
	DstLon    float64 `json:"dst_lon" validate:"required,lt=180,gt=-180"`
	TimeoutMs int64   `json:"timeout_ms" validate:"gte=0"`
}

func (s *GeoShortestPathRequest) Bind(r *http.Request) error {
	return nil
}

type GeoQueryResponse struct {
	QueryID           string                     `json:"query_id"`
	Source            datastructure.Coordinate   `json:"source"`
	Target            datastructure.Coordinate   `json:"target"`
	Outcome           string                     `json:"outcome"`
	Path              string                     `json:"path"`
	Route             []datastructure.Coordinate `json:"route"`
	Distance          float64                    `json:"distance"`
	StatesExplored    int                        `json:"states_explored"`
	ExplorationTimeMs float64                    `json:"exploration_time_ms"`
}

func NewGeoQueryResponse(q service.GeoQuery) *GeoQueryResponse {
	route := q.Route
	if route == nil {
		route = []datastructure.Coordinate{}
	}
	return &GeoQueryResponse{
		QueryID:           q.ID,
		Source:            q.Source,
		Target:            q.Target,
		Outcome:           q.Outcome.String(),
		Path:              q.Polyline,
		Route:             route,
		Distance:          util.RoundFloat(q.Distance/1000, 3), // km
		StatesExplored:    q.NumStatesExplored,
		ExplorationTimeMs: durationMs(q.ExplorationTime),
	}
}

func (h *SearchHandler) shortestPathGeo(w http.ResponseWriter, r *http.Request) {
	data := &GeoShortestPathRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateRequest(w, r, *data) {
		return
	}

	q, err := h.svc.ShortestPathGeo(r.Context(), data.SrcLat, data.SrcLon, data.DstLat, data.DstLon, timeoutFromMs(data.TimeoutMs))
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	h.promeMetrics.observeQuery("road_network", q.Outcome.String(), q.NumStatesExplored)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewGeoQueryResponse(q))
}

type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`          // user-level status message
	AppCode       int64    `json:"code,omitempty"`  // application-specific error code
	ErrorText     string   `json:"error,omitempty"` // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrChi(err error) render.Renderer {
	statusText := ""
	switch getStatusCode(err) {
	case http.StatusNotFound:
		statusText = "Resource not found."
	case http.StatusInternalServerError:
		statusText = "Internal server error."
	case http.StatusConflict:
		statusText = "Resource conflict."
	case http.StatusBadRequest:
		statusText = "Bad request."
	default:
		statusText = "Error."
	}

	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: getStatusCode(err),
		StatusText:     statusText,
		ErrorText:      err.Error(),
	}
}

func getStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var ierr *server.Error
	if !errors.As(err, &ierr) {
		return http.StatusInternalServerError
	}
	switch ierr.Code() {
	case server.ErrInternalServerError:
		return http.StatusInternalServerError
	case server.ErrNotFound:
		return http.StatusNotFound
	case server.ErrConflict:
		return http.StatusConflict
	case server.ErrBadParamInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	for _, e := range validatorErrs {
		errs = append(errs, fmt.Errorf("%s", e.Translate(trans)))
	}
	return errs
}
