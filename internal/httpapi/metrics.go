package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	perrors "github.com/mmichie/pipes/pkg/errors"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pipes",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pipes",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	// Unlabelled: the route is unknown until chi has routed the request.
	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pipes",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "In-flight HTTP requests",
		},
	)

	pipeCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pipes",
			Subsystem: "pipeline",
			Name:      "pipe_calls_total",
			Help:      "Total number of pipe calls by pipeline and result",
		},
		[]string{"pipeline", "result"},
	)

	pipeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pipes",
			Subsystem: "pipeline",
			Name:      "pipe_duration_seconds",
			Help:      "Duration of pipe calls in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"pipeline"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, httpInflight, pipeCallsTotal, pipeDuration)
}

// statusRecorder wraps http.ResponseWriter to capture status code
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware instruments requests for Prometheus
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInflight.Inc()
		defer httpInflight.Dec()

		next.ServeHTTP(sr, r)

		path := routePattern(r)
		status := strconv.Itoa(sr.status)
		httpRequestsTotal.WithLabelValues(path, r.Method, status).Inc()
		httpRequestDuration.WithLabelValues(path, r.Method, status).Observe(time.Since(start).Seconds())
	})
}

// observePipe records one pipe call. Calls to unregistered ids are not
// recorded so callers cannot mint label values.
func observePipe(id string, err error, dur time.Duration) {
	if errors.Is(err, perrors.ErrUnknownPipeline) {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	pipeCallsTotal.WithLabelValues(id, result).Inc()
	pipeDuration.WithLabelValues(id).Observe(dur.Seconds())
}

// unmatchedRoute labels requests no route matched
const unmatchedRoute = "unmatched"

// routePattern returns the chi route pattern, or unmatchedRoute when no route
// matched. Raw URL paths are never used as label values.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return unmatchedRoute
}
