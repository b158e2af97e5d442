package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder exports metrics through a dedicated registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	signups         *prometheus.CounterVec
	logins          *prometheus.CounterVec
	logouts         prometheus.Counter
	todoOps         *prometheus.CounterVec
	ownershipDenied *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewPrometheus registers the application collectors plus the Go and
// process collectors on a fresh registry.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		signups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tasklist_signups_total",
				Help: "Signup attempts by result",
			},
			[]string{"result"},
		),
		logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tasklist_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		logouts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tasklist_logouts_total",
				Help: "Total number of logouts",
			},
		),
		todoOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tasklist_todo_operations_total",
				Help: "Todo mutations by operation",
			},
			[]string{"operation"},
		),
		ownershipDenied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tasklist_ownership_denied_total",
				Help: "Mutations refused because the requester does not own the todo",
			},
			[]string{"operation"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tasklist_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

func (p *PrometheusRecorder) IncSignup(result string) {
	p.signups.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) IncLogin(result string) {
	p.logins.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) IncLogout() {
	p.logouts.Inc()
}

func (p *PrometheusRecorder) IncTodoCreated() {
	p.todoOps.WithLabelValues("create").Inc()
}

func (p *PrometheusRecorder) IncTodoUpdated() {
	p.todoOps.WithLabelValues("update").Inc()
}

func (p *PrometheusRecorder) IncTodoDeleted() {
	p.todoOps.WithLabelValues("delete").Inc()
}

func (p *PrometheusRecorder) IncOwnershipDenied(operation string) {
	p.ownershipDenied.WithLabelValues(operation).Inc()
}

func (p *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	p.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}
