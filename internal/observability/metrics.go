package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	scoreRequestsTotal  *prometheus.CounterVec
	scoreLatencySeconds *prometheus.HistogramVec
	scoreCacheHitsTotal *prometheus.CounterVec
	scoresComputedTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used for engagement
// scoring observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		scoreRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagement_requests_total",
			Help: "Total number of engagement API requests served.",
		}, []string{"method", "route", "status"})

		scoreLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "engagement_latency_seconds",
			Help:    "Latency distribution for engagement API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		scoreCacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagement_score_cache_hits_total",
			Help: "Score evaluations answered from the Redis cache.",
		}, []string{"indicator"})

		scoresComputedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engagement_scores_computed_total",
			Help: "Score evaluations computed from log and grade data.",
		}, []string{"kind", "indicator", "applicable"})

		prometheus.MustRegister(scoreRequestsTotal, scoreLatencySeconds, scoreCacheHitsTotal, scoresComputedTotal)
	})
}

// ScoreRequests exposes the counter for engagement API requests.
func ScoreRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return scoreRequestsTotal
}

// ScoreLatency exposes the latency histogram for engagement API requests.
func ScoreLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return scoreLatencySeconds
}

// ScoreCacheHits exposes the counter for cached score responses.
func ScoreCacheHits() *prometheus.CounterVec {
	RegisterMetrics()
	return scoreCacheHitsTotal
}

// ScoresComputed exposes the counter for freshly computed scores.
func ScoresComputed() *prometheus.CounterVec {
	RegisterMetrics()
	return scoresComputedTotal
}
