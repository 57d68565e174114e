// Package metrics provides the centralized Prometheus metrics registry for
// the odds aggregator.
package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	SyncRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "odds_aggregator",
		Name:      "sync_runs_total",
		Help:      "Total number of sync runs per sport and source provider",
	}, []string{"sport", "source"})
	SyncErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "odds_aggregator",
		Name:      "sync_errors_total",
		Help:      "Total number of provider errors captured during syncs",
	})
	EventsSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "odds_aggregator",
		Name:      "events_skipped_total",
		Help:      "Total number of events skipped by shape validation",
	})
	LineMovementsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "odds_aggregator",
		Name:      "line_movements_total",
		Help:      "Total number of line movement records created",
	})
	SchedulerCyclesSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "odds_aggregator",
		Name:      "scheduler_cycles_skipped_total",
		Help:      "Total number of sync cycles skipped by the single-flight guard",
	})
	ProviderFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "odds_aggregator",
		Name:      "provider_fetches_total",
		Help:      "Total number of provider fetches by provider and outcome",
	}, []string{"provider", "outcome"})
)

// Gauge metrics
var (
	GamesTracked = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "odds_aggregator",
		Name:      "games_tracked",
		Help:      "Number of games updated in the last sync cycle",
	})
	LastSyncTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "odds_aggregator",
		Name:      "last_sync_timestamp_seconds",
		Help:      "Unix timestamp of the last completed sync cycle",
	})
)

// Histogram metrics
var (
	ProviderFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "odds_aggregator",
		Name:      "provider_fetch_duration_seconds",
		Help:      "Latency of upstream provider fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider"})
	SyncDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "odds_aggregator",
		Name:      "sync_duration_seconds",
		Help:      "Duration of full sync cycles in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// Registry returns the global metrics registry, initializing it on first
// use.
func Registry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			SyncRunsTotal,
			SyncErrorsTotal,
			EventsSkippedTotal,
			LineMovementsTotal,
			SchedulerCyclesSkippedTotal,
			ProviderFetchesTotal,
			GamesTracked,
			LastSyncTimestamp,
			ProviderFetchDuration,
			SyncDuration,
		)
	})
	return registry
}

// Handler returns an HTTP handler serving the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry(), promhttp.HandlerOpts{})
}

// Serve starts a metrics HTTP server on the given port. It blocks until
// the server exits.
func Serve(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, Handler())
	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}

// ObserveProviderFetch records one provider fetch attempt.
func ObserveProviderFetch(provider string, duration time.Duration, err error) {
	Registry()
	ProviderFetchDuration.WithLabelValues(provider).Observe(duration.Seconds())
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	ProviderFetchesTotal.WithLabelValues(provider, outcome).Inc()
}

// ObserveSync records the outcome of one full sync cycle.
func ObserveSync(sport, source string, duration time.Duration, gamesUpdated, skipped, errors int) {
	Registry()
	if source == "" {
		source = "none"
	}
	SyncRunsTotal.WithLabelValues(sport, source).Inc()
	SyncDuration.Observe(duration.Seconds())
	SyncErrorsTotal.Add(float64(errors))
	EventsSkippedTotal.Add(float64(skipped))
	GamesTracked.Set(float64(gamesUpdated))
	LastSyncTimestamp.Set(float64(time.Now().Unix()))
}
