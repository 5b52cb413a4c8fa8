// Package telemetry exposes the cache coordinator's statistics as
// Prometheus metrics and instruments the HTTP surface with request
// counters, latency histograms, and in-flight gauges.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corekv",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"op", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "corekv",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 13),
		},
		[]string{"op"},
	)

	InFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "corekv",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
		[]string{"op"},
	)

	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "corekv",
		Name:      "cache_hits_total",
		Help:      "Total number of cache read hits.",
	})
	cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "corekv",
		Name:      "cache_misses_total",
		Help:      "Total number of cache read misses.",
	})
	cacheEvictions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "corekv",
		Name:      "cache_evictions_total",
		Help:      "Total number of keys evicted under memory pressure.",
	})
	cacheExpirations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "corekv",
		Name:      "cache_expirations_total",
		Help:      "Total number of keys removed by TTL expiry.",
	})
	cacheKeyCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "corekv",
		Name:      "cache_keys",
		Help:      "Current number of live keys.",
	})
	cacheMemoryUsed = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "corekv",
		Name:      "cache_memory_used_bytes",
		Help:      "Approximate current memory used by cache entries.",
	})

	startTime = time.Now()
	uptime    = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "corekv",
			Name:      "uptime_seconds",
			Help:      "Process uptime in seconds.",
		},
		func() float64 { return time.Since(startTime).Seconds() },
	)
)

func init() {
	Registry.MustRegister(
		RequestsTotal, RequestDuration, InFlight,
		cacheHits, cacheMisses, cacheEvictions, cacheExpirations,
		cacheKeyCount, cacheMemoryUsed, uptime,
	)
}

// MetricsHandler exposes /metrics. Mount with
// mux.Handle("/metrics", telemetry.MetricsHandler()).
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// CacheStats is the subset of the coordinator's Stats this package
// mirrors into gauges/counters. Kept as a plain struct rather than an
// import of internal/cache to avoid coupling telemetry to the
// coordinator's package.
type CacheStats struct {
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Expirations uint64
	KeyCount    int
	MemoryUsed  int64
}

// lastHits/lastMisses/... track the previous snapshot so the
// monotonically-increasing Prometheus counters only advance by the
// delta since the last observation.
var (
	lastHits        uint64
	lastMisses      uint64
	lastEvictions   uint64
	lastExpirations uint64
)

// ObserveCacheStats updates the mirrored gauges/counters from a fresh
// coordinator stats snapshot. Call this periodically (e.g. from the
// /stats handler or a background poller).
func ObserveCacheStats(s CacheStats) {
	if s.Hits > lastHits {
		cacheHits.Add(float64(s.Hits - lastHits))
		lastHits = s.Hits
	}
	if s.Misses > lastMisses {
		cacheMisses.Add(float64(s.Misses - lastMisses))
		lastMisses = s.Misses
	}
	if s.Evictions > lastEvictions {
		cacheEvictions.Add(float64(s.Evictions - lastEvictions))
		lastEvictions = s.Evictions
	}
	if s.Expirations > lastExpirations {
		cacheExpirations.Add(float64(s.Expirations - lastExpirations))
		lastExpirations = s.Expirations
	}
	cacheKeyCount.Set(float64(s.KeyCount))
	cacheMemoryUsed.Set(float64(s.MemoryUsed))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Instrument wraps an http.Handler to record request metrics under the
// given op label.
func Instrument(op string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: 200}
		start := time.Now()

		InFlight.WithLabelValues(op).Inc()
		defer InFlight.WithLabelValues(op).Dec()

		next.ServeHTTP(sw, r)

		class := strconv.Itoa(sw.status/100) + "xx"
		RequestsTotal.WithLabelValues(op, class).Inc()
		RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	})
}
