package rules

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rulesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "advisor_rules_loaded",
			Help: "Number of rules in the active rule set",
		},
	)

	rulesSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_rules_skipped_total",
			Help: "Total number of rule lines skipped as malformed",
		},
	)

	ruleEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_rule_evaluations_total",
			Help: "Total number of rule evaluations by outcome",
		},
		[]string{"outcome"}, // "triggered", "not_triggered" or "error"
	)

	decisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_decisions_total",
			Help: "Total number of decisions by decision and strength",
		},
		[]string{"decision", "strength"},
	)

	evaluationLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "advisor_evaluation_latency_seconds",
			Help:    "Latency of evaluating a rule set in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
	)
)
