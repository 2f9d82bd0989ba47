// Package metrics exposes Prometheus instrumentation for the chat relay.
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

// Recipe extraction outcomes
const (
	ExtractionParsed = "parsed"
	ExtractionFailed = "failed"
	ExtractionAbsent = "absent"
)

// Collector handles Prometheus metrics collection. A nil *Collector is valid
// and records nothing.
type Collector struct {
	registry *prometheus.Registry

	providerRequests  *prometheus.CounterVec
	providerDuration  *prometheus.HistogramVec
	recipeExtractions *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New creates a collector backed by its own registry
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		providerRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_provider_requests_total",
				Help: "Total number of LLM provider calls",
			},
			[]string{"provider", "status"},
		),
		providerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chat_provider_request_duration_seconds",
				Help:    "LLM provider call duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"provider"},
		),
		recipeExtractions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_recipe_extractions_total",
				Help: "Recipe block extraction outcomes",
			},
			[]string{"outcome"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// ObserveProviderCall records the outcome and latency of one provider call
func (c *Collector) ObserveProviderCall(provider string, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.providerRequests.WithLabelValues(provider, status).Inc()
	c.providerDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// RecordExtraction counts one recipe extraction outcome
func (c *Collector) RecordExtraction(outcome string) {
	if c == nil {
		return
	}
	c.recipeExtractions.WithLabelValues(outcome).Inc()
}

// ObserveHTTPRequest records one served HTTP request
func (c *Collector) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
