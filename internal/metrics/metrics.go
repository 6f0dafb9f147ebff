// Package metrics holds the Prometheus collectors of the escalation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StagesFired counts stage transitions this process won the claim for.
	StagesFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bellhop_stages_fired_total",
			Help: "Total number of escalation stages fired",
		},
		[]string{"stage"},
	)

	// DuplicateClaims counts claims lost to another evaluator on a request that is still open.
	DuplicateClaims = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bellhop_stage_claims_duplicate_total",
			Help: "Total number of stage claims already taken by another evaluator",
		},
		[]string{"stage"},
	)

	// Dispatches counts notification attempts by channel and outcome.
	Dispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bellhop_dispatches_total",
			Help: "Total number of notification dispatches",
		},
		[]string{"channel", "result"}, // result: sent, failed, rejected, throttled
	)

	// ReassignNoHandler counts auto-reassign stages that found nobody available.
	ReassignNoHandler = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bellhop_reassign_no_handler_total",
			Help: "Total number of auto-reassign stages with no available handler",
		},
	)

	// LeaseSkips counts tenant evaluations skipped because another evaluator held the lease.
	LeaseSkips = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bellhop_lease_skips_total",
			Help: "Total number of tenant evaluations skipped due to a held lease",
		},
	)

	// EvaluationDuration observes the wall time of one EvaluateAll pass.
	EvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bellhop_evaluation_duration_seconds",
			Help:    "Duration of a full evaluation pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	// HTTPRequests counts API requests by route template and status code.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bellhop_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"route", "code"},
	)

	// EvaluatedRequests reports the open requests this process examined in its last pass.
	// Tenants leased by another evaluator are not included.
	EvaluatedRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bellhop_evaluated_requests",
			Help: "Number of open requests examined by this process in the last evaluation pass",
		},
	)
)

// Dispatch result labels
const (
	ResultSent      = "sent"
	ResultFailed    = "failed"
	ResultRejected  = "rejected" // circuit open
	ResultThrottled = "throttled"
)
