package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MatchingRuns counts matching engine invocations by result (matched|empty|error).
	MatchingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bidmarket_matching_runs_total",
			Help: "Total number of matching engine runs",
		},
		[]string{"result"},
	)

	// AlertsCreated counts alert rows persisted by the matching engine.
	AlertsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bidmarket_alerts_created_total",
			Help: "Total number of alert rows created",
		},
	)

	// AlertDedupHits counts duplicate alert inserts swallowed by the unique index.
	AlertDedupHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bidmarket_alert_dedup_hits_total",
			Help: "Total number of duplicate alert inserts suppressed",
		},
	)

	// ProposalsCreated counts proposals persisted per call outcome.
	ProposalsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bidmarket_proposals_created_total",
			Help: "Total number of proposal rows created",
		},
	)

	// DispatchQueueDepth tracks jobs currently waiting in the notification queue.
	DispatchQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bidmarket_dispatch_queue_depth",
			Help: "Number of notification jobs waiting in the dispatch queue",
		},
	)

	// DispatchJobs counts dispatched notification jobs by outcome (ok|failed|dropped).
	DispatchJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bidmarket_dispatch_jobs_total",
			Help: "Total number of notification dispatch jobs processed",
		},
		[]string{"kind", "result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bidmarket_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
