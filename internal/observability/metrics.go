package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce      sync.Once
	requestsTotal     *prometheus.CounterVec
	latencySeconds    *prometheus.HistogramVec
	errorsTotal       *prometheus.CounterVec
	purchasesTotal    *prometheus.CounterVec
	grammarUpstreamKO prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors for the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schreiber_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schreiber_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schreiber_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		purchasesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schreiber_purchases_total",
			Help: "Total number of recorded purchases by kind.",
		}, []string{"kind"})

		grammarUpstreamKO = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schreiber_grammar_upstream_failures_total",
			Help: "Total number of failed calls to the grammar-check upstream.",
		})

		prometheus.MustRegister(requestsTotal, latencySeconds, errorsTotal, purchasesTotal, grammarUpstreamKO)
	})
}

// Requests exposes the request counter.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the request latency histogram.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the error-response counter.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// Purchases exposes the purchase counter; kind is "course" or "package".
func Purchases() *prometheus.CounterVec {
	RegisterMetrics()
	return purchasesTotal
}

// GrammarUpstreamFailures exposes the grammar upstream failure counter.
func GrammarUpstreamFailures() prometheus.Counter {
	RegisterMetrics()
	return grammarUpstreamKO
}

// MetricsHandler exposes the Prometheus scrape endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}
