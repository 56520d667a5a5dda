package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_checks_total",
			Help: "Moderation gate decisions by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	checkDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moderation_check_duration_seconds",
			Help:    "Latency of moderation gate calls.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	fallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_fallbacks_total",
			Help: "Provider answers replaced by a fail-open or fail-closed verdict.",
		},
		[]string{"provider", "mode"},
	)

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moderation_breaker_state",
			Help: "Circuit breaker state per provider (0 closed, 1 half-open, 2 open).",
		},
		[]string{"breaker"},
	)
)

const (
	modeFailOpen   = "fail_open"
	modeFailClosed = "fail_closed"
)

func outcome(v Verdict) string {
	if v.Safe {
		return "allowed"
	}
	return "blocked"
}
