package caddyplugin

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics mirrors the teacher's server_metrics.go shape scaled down to
// what moc_query actually needs: request counts/duration by status, and
// query result cardinality.
type metrics struct {
	requests      *prometheus.CounterVec
	requestDur    *prometheus.HistogramVec
	resultMatches prometheus.Histogram
}

func register[K prometheus.Collector](logger *log.Logger, metric K) K {
	if err := prometheus.Register(metric); err != nil {
		logger.Println(err)
	}
	return metric
}

func createMetrics(logger *log.Logger) *metrics {
	namespace := "moc_query"
	return &metrics{
		requests: register(logger, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Number of moc_query requests by status",
		}, []string{"status"})),
		requestDur: register(logger, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "moc_query request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"})),
		resultMatches: register(logger, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "result_matches",
			Help:      "Number of matching ids returned per query",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000},
		})),
	}
}
