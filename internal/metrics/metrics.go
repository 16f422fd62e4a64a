// Package metrics holds the Prometheus collectors exported by the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "catalogapi"

// Registry bundles the service collectors with the registry they are
// registered on. A fresh Registry per process (or per test) avoids global state.
type Registry struct {
	reg *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	HTTPLatency      *prometheus.HistogramVec
	AuthDecisions    *prometheus.CounterVec
	ProductsInserted prometheus.Counter
	DBQueries        *prometheus.CounterVec
}

// New creates a Registry with all collectors registered, plus the Go runtime
// and process collectors.
func New() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	r.HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	r.HTTPLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	r.AuthDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_decisions_total",
		Help:      "Authentication outcomes by verdict.",
	}, []string{"verdict"})

	r.ProductsInserted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "products_inserted_total",
		Help:      "Products written to the catalog.",
	})

	r.DBQueries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "db_queries_total",
		Help:      "Database statements by operation and outcome.",
	}, []string{"op", "outcome"})

	r.reg.MustRegister(
		r.HTTPRequests,
		r.HTTPLatency,
		r.AuthDecisions,
		r.ProductsInserted,
		r.DBQueries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ObserveQuery records one database statement. A nil Registry is a no-op so
// stores can be used without metrics.
func (r *Registry) ObserveQuery(op string, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.DBQueries.WithLabelValues(op, outcome).Inc()
}

// ObserveAuth records one authentication verdict.
func (r *Registry) ObserveAuth(verdict string) {
	if r == nil {
		return
	}
	r.AuthDecisions.WithLabelValues(verdict).Inc()
}

// AddInserted adds n to the inserted products counter.
func (r *Registry) AddInserted(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.ProductsInserted.Add(float64(n))
}
