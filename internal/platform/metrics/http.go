package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unmatchedRoute labels requests that no route matched, keeping label
// cardinality bounded.
const unmatchedRoute = "unmatched"

// HTTPMetrics collects HTTP request metrics and the application counters.
type HTTPMetrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec

	logins *prometheus.CounterVec
	blogs  *prometheus.CounterVec
	likes  prometheus.Counter
}

// NewHTTPMetrics creates a new HTTPMetrics with its own registry.
func NewHTTPMetrics() *HTTPMetrics {
	reg := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "route", "status"})

	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_attempts_total",
		Help: "Login attempts by result.",
	}, []string{"result"})

	blogs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_mutations_total",
		Help: "Committed blog mutations by operation.",
	}, []string{"operation"})

	likes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "blog_likes_total",
		Help: "Total number of likes recorded.",
	})

	reg.MustRegister(requests, latency, logins, blogs, likes)

	return &HTTPMetrics{
		registry: reg,
		requests: requests,
		latency:  latency,
		logins:   logins,
		blogs:    blogs,
		likes:    likes,
	}
}

// Middleware records request count and duration labelled by route pattern.
func (m *HTTPMetrics) Middleware(next http.Handler) http.Handler {
	if m == nil || m.requests == nil || m.latency == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := []string{r.Method, routePattern(r), strconv.Itoa(status)}
		m.requests.WithLabelValues(labels...).Inc()
		m.latency.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	})
}

// routePattern must run after routing, which is why it reads the context
// populated by chi rather than the raw path.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}

// LoginAttempt counts a login by outcome.
func (m *HTTPMetrics) LoginAttempt(success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.logins.WithLabelValues(result).Inc()
}

// BlogCreated counts a created blog.
func (m *HTTPMetrics) BlogCreated() {
	if m == nil {
		return
	}
	m.blogs.WithLabelValues("create").Inc()
}

// BlogLiked counts a like.
func (m *HTTPMetrics) BlogLiked() {
	if m == nil {
		return
	}
	m.blogs.WithLabelValues("like").Inc()
	m.likes.Inc()
}

// BlogDeleted counts a deleted blog.
func (m *HTTPMetrics) BlogDeleted() {
	if m == nil {
		return
	}
	m.blogs.WithLabelValues("delete").Inc()
}

// Handler returns a Prometheus handler that serves metrics.
func (m *HTTPMetrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
