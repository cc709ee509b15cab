// Package metrics exposes Prometheus counters for HTTP traffic, signaling
// and contract transitions.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rahulraut1220/LegalEase/model"
)

type Metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	relayEvents *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "legalease_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		relayEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "legalease_relay_events_total",
			Help: "Signaling events by event name and outcome.",
		}, []string{"event", "outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "legalease_contract_transitions_total",
			Help: "Committed contract status changes.",
		}, []string{"from", "to"}),
	}
	m.registry.MustRegister(
		m.requests,
		m.relayEvents,
		m.transitions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveRelayEvent(event, outcome string) {
	m.relayEvents.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) ObserveTransition(from, to model.Status) {
	m.transitions.WithLabelValues(string(from), string(to)).Inc()
}

// Middleware counts every request by its route template
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
