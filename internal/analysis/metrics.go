package analysis

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_analyses_total",
			Help: "Total number of symbol analyses",
		},
		[]string{"result"},
	)

	analysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "advisor_analysis_duration_seconds",
			Help:    "End-to-end analysis latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	fundamentalsDegraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_fundamentals_degraded_total",
			Help: "Analyses that ran with null fundamentals after a fetch failure",
		},
	)

	persistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_persist_failures_total",
			Help: "Analyses that could not be persisted",
		},
	)
)
