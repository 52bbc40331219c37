package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_scheduler_runs_total",
			Help: "Total number of scheduled job runs",
		},
		[]string{"job"},
	)

	jobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "advisor_scheduler_run_duration_seconds",
			Help:    "Duration of scheduled job runs",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
		[]string{"job"},
	)

	watchlistSymbolsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_watchlist_symbols_total",
			Help: "Total number of watchlist symbols analyzed by result",
		},
		[]string{"result"},
	)
)
