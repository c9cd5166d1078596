// Package metrics holds the prometheus collectors for the recommendation pipeline.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Veraticus/cardwise/internal/model"
)

var (
	// RecommendRequests counts recommendation requests by outcome.
	RecommendRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cardwise_recommend_requests_total",
		Help: "Total number of recommendation requests",
	}, []string{"outcome"})

	// RecommendLatency is the end-to-end latency of a recommendation.
	RecommendLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cardwise_recommend_latency_seconds",
		Help:    "Latency of recommendation requests",
		Buckets: prometheus.DefBuckets,
	})

	// ProviderCandidates counts candidates returned per provider.
	ProviderCandidates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cardwise_provider_candidates_total",
		Help: "Candidates returned by each provider",
	}, []string{"provider"})

	// MergedOrigins counts merged results by which providers produced them.
	MergedOrigins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cardwise_merged_candidates_total",
		Help: "Merged recommendations by origin",
	}, []string{"origin"})

	// EmptyResults counts requests that produced no recommendation.
	EmptyResults = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cardwise_empty_results_total",
		Help: "Recommendation requests that returned no cards",
	})
)

// Outcome labels for RecommendRequests.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

var registerOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RecommendRequests,
			RecommendLatency,
			ProviderCandidates,
			MergedOrigins,
			EmptyResults,
		)
	})
}

// ObserveProvider records how many candidates a provider returned.
func ObserveProvider(name string, n int) {
	ProviderCandidates.WithLabelValues(name).Add(float64(n))
}

// ObserveRecommendation records the outcome of one recommendation request.
func ObserveRecommendation(start time.Time, origins []model.Origin, err error) {
	RecommendLatency.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		RecommendRequests.WithLabelValues(OutcomeError).Inc()
	case len(origins) == 0:
		RecommendRequests.WithLabelValues(OutcomeEmpty).Inc()
		EmptyResults.Inc()
	default:
		RecommendRequests.WithLabelValues(OutcomeOK).Inc()
	}

	for _, o := range origins {
		MergedOrigins.WithLabelValues(string(o)).Inc()
	}
}
