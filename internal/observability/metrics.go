package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency. Explore requests fan out, expect a longer tail there.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight.
	HTTPRequestsInFlight prometheus.Gauge

	// Outbound provider calls by provider and status (success, client_error, server_error, rate_limited, error).
	ProviderCallsTotal *prometheus.CounterVec

	// Outbound provider latency. Overpass routinely takes seconds; alert per provider.
	ProviderDuration *prometheus.HistogramVec

	// Provider failures by ErrorCategory. Includes failures absorbed by fallback policy.
	ProviderErrorsTotal *prometheus.CounterVec

	// Circuit breaker transitions and current state (0 closed, 1 open, 2 half-open).
	CircuitBreakerTransitionsTotal *prometheus.CounterVec
	CircuitBreakerState            *prometheus.GaugeVec

	// Geocoding outcomes: found, not_found, error.
	GeocodeLookupsTotal *prometheus.CounterVec

	// POI searches by source (live, fallback) and fallback reason (empty, provider_error).
	POISearchesTotal *prometheus.CounterVec

	// Weather lookups by result (ok, absent).
	WeatherLookupsTotal *prometheus.CounterVec

	// Translation requests by direction and outcome (success, failed).
	TranslationRequestsTotal *prometheus.CounterVec

	// Translation backend handles created. Should stay at one per direction per process.
	TranslationBackendInitsTotal *prometheus.CounterVec

	// Rate limit denials.
	RateLimitDeniedTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	ProviderCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "providerCallsTotal",
			Help: "Total number of outbound provider calls",
		},
		[]string{"provider", "status"},
	)
	ProviderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "providerDurationSeconds",
			Help:    "Outbound provider latency in seconds (per call)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "status"},
	)
	ProviderErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "providerErrorsTotal",
			Help: "Outbound provider failures by category",
		},
		[]string{"provider", "category"},
	)
	CircuitBreakerTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuitBreakerTransitionsTotal",
			Help: "Circuit breaker state transitions",
		},
		[]string{"provider", "from", "to"},
	)
	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuitBreakerState",
			Help: "Circuit breaker state: 0 closed, 1 open, 2 half-open",
		},
		[]string{"provider"},
	)
	GeocodeLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocodeLookupsTotal",
			Help: "Geocoding lookups by result",
		},
		[]string{"result"},
	)
	POISearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poiSearchesTotal",
			Help: "POI searches by source and fallback reason",
		},
		[]string{"source", "reason"},
	)
	WeatherLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherLookupsTotal",
			Help: "Current weather lookups by result",
		},
		[]string{"result"},
	)
	TranslationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translationRequestsTotal",
			Help: "Translation requests by direction and outcome",
		},
		[]string{"direction", "outcome"},
	)
	TranslationBackendInitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translationBackendInitsTotal",
			Help: "Translation backend handles created",
		},
		[]string{"direction"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		ProviderCallsTotal, ProviderDuration, ProviderErrorsTotal,
		CircuitBreakerTransitionsTotal, CircuitBreakerState,
		GeocodeLookupsTotal, POISearchesTotal, WeatherLookupsTotal,
		TranslationRequestsTotal, TranslationBackendInitsTotal,
		RateLimitDeniedTotal,
	)
}

// RecordCircuitBreakerTransition counts a transition and updates the state gauge.
// stateValue follows the circuitBreakerState help text.
func RecordCircuitBreakerTransition(provider, from, to string, stateValue int) {
	CircuitBreakerTransitionsTotal.WithLabelValues(provider, from, to).Inc()
	CircuitBreakerState.WithLabelValues(provider).Set(float64(stateValue))
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
