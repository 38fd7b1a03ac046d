// Package metrics exposes Prometheus instruments for the OptiHealth services.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "optihealth"

// Census build outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeEmpty    = "empty"
	OutcomeDegraded = "degraded"
)

// Dashboard cache results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Registry is a dedicated registry so the default Go collectors stay out of /metrics.
var Registry = prometheus.NewRegistry()

var (
	predictionsTotal *prometheus.CounterVec
	riskScores       prometheus.Histogram
	censusBuilds     *prometheus.CounterVec
	dashboardCache   *prometheus.CounterVec
	eventsPublished  *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
)

func init() {
	auto := promauto.With(Registry)

	predictionsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "risk",
		Name:      "predictions_total",
		Help:      "Risk predictions served, by risk level.",
	}, []string{"level"})

	riskScores = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "risk",
		Name:      "score",
		Help:      "Distribution of final composite risk scores.",
		Buckets:   []float64{10, 25, 50, 75, 90, 98},
	})

	censusBuilds = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "census",
		Name:      "builds_total",
		Help:      "Census continuity series built, by outcome.",
	}, []string{"outcome"})

	dashboardCache = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dashboard",
		Name:      "cache_requests_total",
		Help:      "Dashboard cache lookups, by result.",
	}, []string{"result"})

	eventsPublished = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Events written to the message bus, by topic and outcome.",
	}, []string{"topic", "outcome"})

	httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests, by route, method and status code.",
	}, []string{"route", "method", "status"})

	httpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
}

func ObservePrediction(level string, score int) {
	predictionsTotal.WithLabelValues(level).Inc()
	riskScores.Observe(float64(score))
}

func ObserveCensusBuild(outcome string) {
	censusBuilds.WithLabelValues(outcome).Inc()
}

func ObserveDashboardCache(result string) {
	dashboardCache.WithLabelValues(result).Inc()
}

func ObserveEventPublish(topic string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	eventsPublished.WithLabelValues(topic, outcome).Inc()
}

func ObserveHTTPRequest(route, method string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
