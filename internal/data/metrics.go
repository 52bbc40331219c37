package data

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_data_fetch_total",
			Help: "Total number of data provider requests",
		},
		[]string{"source", "kind", "result"},
	)

	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "advisor_data_fetch_duration_seconds",
			Help:    "Data provider request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source", "kind"},
	)
)

func observeFetch(source, kind string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	fetchTotal.WithLabelValues(source, kind, result).Inc()
	fetchDuration.WithLabelValues(source, kind).Observe(time.Since(start).Seconds())
}
