package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the API. A nil *Metrics is
// safe to use; every method is a no-op.
type Metrics struct {
	reg      *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	actions  *prometheus.CounterVec
	gain     prometheus.Histogram
}

// NewMetrics registers the instruments on a private registry. live reports
// the number of careers held in memory.
func NewMetrics(live func() int) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careersim_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "path", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "careersim_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careersim_actions_total",
			Help: "Career actions applied, by kind.",
		}, []string{"kind"}),
		gain: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "careersim_daily_ca_gain",
			Help:    "CA gained by the player per applied day.",
			Buckets: []float64{0, 0.01, 0.025, 0.05, 0.1, 0.2, 0.5},
		}),
	}
	m.reg.MustRegister(m.requests, m.latency, m.actions, m.gain, collectors.NewGoCollector())
	if live != nil {
		m.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "careersim_careers_live",
			Help: "Careers held in memory.",
		}, func() float64 { return float64(live()) }))
	}
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// ObserveAction counts an applied action and its CA gain.
func (m *Metrics) ObserveAction(kind string, gained float64) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(kind).Inc()
	m.gain.Observe(gained)
}

// Middleware records request counts and latency per matched route.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		m.requests.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		m.latency.WithLabelValues(path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
