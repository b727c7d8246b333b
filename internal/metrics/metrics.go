// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchEvents counts tree events by kind (depth, pruned, solution).
	SearchEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fealden_search_events_total",
		Help: "Search tree events by kind",
	}, []string{"kind"})

	// SearchAccepted counts candidates that passed validation.
	SearchAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fealden_search_accepted_total",
		Help: "Candidates accepted by validation",
	})

	// Searches counts finished searches by result (found, empty, failed, cancelled).
	Searches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fealden_searches_total",
		Help: "Finished searches by result",
	}, []string{"result"})

	// PredictorDuration tracks structure prediction latency.
	PredictorDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fealden_predictor_duration_seconds",
		Help:    "Structure prediction duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	})

	// PredictorErrors counts failed predictions.
	PredictorErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fealden_predictor_errors_total",
		Help: "Failed structure predictions",
	})

	// PredictorCache counts memoised prediction lookups by result (hit, miss).
	PredictorCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fealden_predictor_cache_total",
		Help: "Prediction cache lookups by result",
	}, []string{"result"})

	// QueueRequests counts work queue submissions by result (queued, invalid, cached).
	QueueRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fealden_queue_requests_total",
		Help: "Search requests by submission result",
	}, []string{"result"})

	// Outcomes counts written search outcomes by status (found, failed).
	Outcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fealden_outcomes_total",
		Help: "Search outcomes written by status",
	}, []string{"status"})

	// Notifications counts completion mails by result (sent, failed).
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fealden_notifications_total",
		Help: "Completion notices by delivery result",
	}, []string{"result"})
)
