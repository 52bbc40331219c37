package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storageWriteTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_storage_write_total",
			Help: "Total number of analysis writes",
		},
		[]string{"driver", "status"}, // status: "success" or "error"
	)

	storageLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "advisor_storage_latency_seconds",
			Help:    "Storage operation latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
		[]string{"driver", "operation"},
	)
)
