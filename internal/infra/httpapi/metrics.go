package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	solves     *prometheus.CounterVec
	iterations *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		// requests counts handled requests by route and status code
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "numlab_http_requests_total",
			Help: "Total HTTP requests by route and status code",
		}, []string{"route", "code"}),

		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "numlab_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~1.6s
		}, []string{"route"}),

		// solves counts solves by method and outcome ("converged" or an error kind)
		solves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "numlab_solves_total",
			Help: "Total solves by method and outcome",
		}, []string{"method", "outcome"}),

		iterations: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "numlab_solve_iterations",
			Help:    "Iterations recorded per solve",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000},
		}, []string{"method"}),
	}
}
