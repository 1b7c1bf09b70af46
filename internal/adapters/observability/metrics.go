package observability

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "travel", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "travel", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "travel", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	PlanGenerations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "travel", Name: "plan_generate_total", Help: "Plan generation attempts by outcome."},
		[]string{"outcome"}, // ok|no_circuit|no_homestay|over_budget|invalid|error
	)
	MatchRequests = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "travel", Name: "itinerary_match_total", Help: "Itinerary match requests."},
	)
	MatchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "travel", Name: "itinerary_match_results",
			Help:    "Matched itineraries per request.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)
)

// Serve starts the internal metrics listener when METRICS_ADDR is set.
func Serve() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, CacheEvents, PlanGenerations, MatchRequests, MatchResults)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObservePlanGeneration(outcome string) {
	PlanGenerations.WithLabelValues(outcome).Inc()
}

func ObserveMatch(resultCount int) {
	MatchRequests.Inc()
	MatchResults.Observe(float64(resultCount))
}
