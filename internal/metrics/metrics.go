// Package metrics exposes Prometheus instrumentation for recommendations,
// pattern refreshes, and OpenDota requests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by the counters below.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeDegraded = "degraded"
	OutcomeNone     = "none"
)

var (
	// Recommendations counts answered recommendation requests by source
	// ("pattern", "similarity", "none").
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draft_recommendations_total",
			Help: "Total number of recommendation requests by result source",
		},
		[]string{"source"},
	)

	// PatternRefreshes counts refresh runs by outcome.
	PatternRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draft_pattern_refreshes_total",
			Help: "Total number of pattern refresh runs by outcome",
		},
		[]string{"outcome"},
	)

	// PatternRefreshDuration observes end-to-end refresh time.
	PatternRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "draft_pattern_refresh_duration_seconds",
			Help:    "Duration of pattern refresh runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)

	// PatternsLoaded is the size of the active pattern set.
	PatternsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "draft_patterns_loaded",
			Help: "Number of patterns in the active pattern set",
		},
	)

	// HeroesLoaded is the size of the active hero catalog.
	HeroesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "draft_heroes_loaded",
			Help: "Number of heroes in the active catalog",
		},
	)

	// OpenDotaRequests counts API calls by endpoint and outcome.
	OpenDotaRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opendota_requests_total",
			Help: "Total number of OpenDota API requests",
		},
		[]string{"endpoint", "outcome"},
	)

	// CacheLookups counts response cache hits and misses.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draft_cache_lookups_total",
			Help: "Total number of response cache lookups by result",
		},
		[]string{"cache", "result"},
	)
)

// RecordRecommendation records one recommendation request. An empty source
// means no recommendation was produced.
func RecordRecommendation(source string) {
	if source == "" {
		source = OutcomeNone
	}
	Recommendations.WithLabelValues(source).Inc()
}

// RecordRefresh records a refresh run and its duration.
func RecordRefresh(outcome string, d time.Duration, patterns int) {
	PatternRefreshes.WithLabelValues(outcome).Inc()
	PatternRefreshDuration.Observe(d.Seconds())
	PatternsLoaded.Set(float64(patterns))
}

// RecordCache records a cache lookup.
func RecordCache(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(cache, result).Inc()
}
