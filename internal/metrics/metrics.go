package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scamshield_requests_total",
		Help: "Total classification requests by source and deciding layer",
	}, []string{"source", "origin"})

	CacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scamshield_cache_hits_total",
		Help: "Total dedup hits by tier (fast or durable)",
	}, []string{"tier"})

	CascadeCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scamshield_cascade_calls_total",
		Help: "Total secondary classifier escalations by result",
	}, []string{"result"})

	CrowdOverrides = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scamshield_crowd_overrides_total",
		Help: "Total outcomes raised by the crowd signal",
	})

	PersistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scamshield_persist_failures_total",
		Help: "Total dropped or failed durable writes",
	})

	PromotedEntities = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scamshield_promoted_entities_total",
		Help: "Total entities promoted into the blacklist",
	})

	FeedbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scamshield_feedback_total",
		Help: "Total feedback submissions by type",
	}, []string{"type"})
)

// MustRegister installs all engine metrics on the default registry.
func MustRegister() {
	prometheus.MustRegister(
		RequestsTotal,
		CacheHits,
		CascadeCalls,
		CrowdOverrides,
		PersistFailures,
		PromotedEntities,
		FeedbackTotal,
	)
}
