package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// prometheus metrics
type metrics struct {
	SPQueryCount       *prometheus.CounterVec
	statesExplored     *prometheus.HistogramVec
	httpDuration       *prometheus.HistogramVec
	durationSummary    prometheus.Summary
	responseStatusCode *prometheus.CounterVec
	totalRequests      *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		SPQueryCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "astarx",
			Name:      "shortestpath_query_count",
			Help:      "The total number of a* shortest path query",
		}, []string{"endpoint", "outcome"}),
		statesExplored: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "astarx",
			Name:      "states_explored",
			Help:      "The number of vertices finalized by a* before it stopped",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"endpoint"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "astarx",
			Name:      "request_duration_seconds",
			Help:      "The duration of request",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5}, // 0.001 = 1ms
		}, []string{"method", "path"}),
		durationSummary: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace:  "astarx",
			Name:       "shortestpath_request_duration_summary_seconds",
			Help:       "The duration of request",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}),
		responseStatusCode: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "astarx",
				Name:      "response_status_code",
				Help:      "The status code of http response",
			}, []string{"status", "method", "path"},
		),
		totalRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "astarx",
				Name:      "total_requests",
				Help:      "The total number of requests",
			}, []string{"path", "method", "status"},
		),
	}
	reg.MustRegister(m.SPQueryCount, m.statesExplored, m.httpDuration, m.durationSummary, m.responseStatusCode, m.totalRequests)
	return m
}

func (m *metrics) observeQuery(endpoint, outcome string, statesExplored int) {
	m.SPQueryCount.WithLabelValues(endpoint, outcome).Inc()
	m.statesExplored.WithLabelValues(endpoint).Observe(float64(statesExplored))
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func NewResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// PromeHttpMiddleware label path pakai route pattern chi supaya /graphs/{name} tidak meledak jadi banyak series
func PromeHttpMiddleware(m *metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := NewResponseWriter(w)
			now := time.Now()

			next.ServeHTTP(rw, r)

			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				path = rctx.RoutePattern()
			}
			statusCode := strconv.Itoa(rw.statusCode)
			elapsed := time.Since(now).Seconds()

			m.httpDuration.With(prometheus.Labels{"method": r.Method, "path": path}).Observe(elapsed)
			m.responseStatusCode.With(prometheus.Labels{"status": statusCode, "method": r.Method, "path": path}).Inc()
			m.totalRequests.With(prometheus.Labels{"path": path, "method": r.Method, "status": statusCode}).Inc()
			m.durationSummary.Observe(elapsed)
		})
	}
}
