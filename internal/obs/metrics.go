package obs

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Storage operation metrics.
var (
	storageQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_queries_total",
			Help: "Total number of storage operations.",
		},
		[]string{"entity", "op", "outcome"},
	)

	storageQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_query_duration_seconds",
			Help:    "Storage operation latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"entity", "op"},
	)
)

// Init registers metrics with the default registry.
func Init() {
	prometheus.MustRegister(storageQueriesTotal, storageQueryDuration)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveQuery records one storage operation. Call it deferred with the
// operation start time and the named error result.
func ObserveQuery(entity, op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	storageQueriesTotal.WithLabelValues(entity, op, outcome).Inc()
	storageQueryDuration.WithLabelValues(entity, op).Observe(time.Since(start).Seconds())
}
