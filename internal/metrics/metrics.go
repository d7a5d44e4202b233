// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "petvend"

// Metrics groups the collectors updated by the services and middleware.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	calculations *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	leads        *prometheus.CounterVec
	rpcDuration  *prometheus.HistogramVec
}

// New creates a registry with Go runtime collectors and the PetVend metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		calculations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Calculator invocations by calculator and outcome.",
		}, []string{"calculator", "outcome"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_lookups_total",
			Help:      "Result cache lookups by result (hit or miss).",
		}, []string{"result"}),
		leads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leads_submitted_total",
			Help:      "Accepted form submissions by lead kind.",
		}, []string{"kind"}),
		rpcDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Duration of RPC calls by procedure and status code.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"procedure", "code"}),
	}
}

// ObserveCalculation counts one calculator run. outcome is "ok" or an error class.
func (m *Metrics) ObserveCalculation(calculator, outcome string) {
	if m == nil {
		return
	}
	m.calculations.WithLabelValues(calculator, outcome).Inc()
}

// ObserveCacheLookup counts one result cache lookup.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveLead counts an accepted lead.
func (m *Metrics) ObserveLead(kind string) {
	if m == nil {
		return
	}
	m.leads.WithLabelValues(kind).Inc()
}

// ObserveRPC records the duration of one RPC call.
func (m *Metrics) ObserveRPC(procedure, code string, seconds float64) {
	if m == nil {
		return
	}
	m.rpcDuration.WithLabelValues(procedure, code).Observe(seconds)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
