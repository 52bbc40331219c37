package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cacheRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "advisor_cache_requests_total",
		Help: "Total number of cache lookups by backend and result",
	},
	[]string{"backend", "result"}, // result: "hit", "miss" or "error"
)
